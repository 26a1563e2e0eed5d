package cli

import (
	"fmt"
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lazypower/neurograph/internal/graph"
	"github.com/lazypower/neurograph/internal/store"
)

var (
	seedName        string
	seedExperiences int
	seedPatterns    int
	seedKnowledge   int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert a synthetic agent and records into the store",
	RunE:  runSeed,
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedName, "name", "demo agent", "agent name")
	f.IntVar(&seedExperiences, "experiences", 12, "experiences to create")
	f.IntVar(&seedPatterns, "patterns", 5, "patterns to create")
	f.IntVar(&seedKnowledge, "knowledge", 3, "knowledge entries to create")
}

var seedText = map[graph.NodeType][]string{
	graph.TypeExperience: {
		"Answered a billing question", "Escalated a login failure", "Summarised a long thread",
		"Fixed a flaky deploy", "Drafted release notes", "Triaged a bug report",
	},
	graph.TypePattern: {
		"Users ask about invoices at month end", "Login issues follow password resets",
		"Deploys fail when caches are cold",
	},
	graph.TypeKnowledge: {
		"Invoices are generated on the 1st", "Reset tokens expire after one hour",
	},
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	defer db.Close()

	a, err := db.CreateAgent(seedName)
	if err != nil {
		return err
	}

	n, err := seedRecords(db, a.ID, map[graph.NodeType]int{
		graph.TypeExperience: seedExperiences,
		graph.TypePattern:    seedPatterns,
		graph.TypeKnowledge:  seedKnowledge,
	}, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s seeded agent %s with %d records\n", good.Sprint("✓"), brand.Sprint(a.ID), n)
	return nil
}

// seedRecords inserts counts[tier] records per tier for agentID and returns
// how many were written.
func seedRecords(db *store.DB, agentID string, counts map[graph.NodeType]int, rng graph.Rand) (int, error) {
	total := 0
	for _, tier := range store.Tiers() {
		texts := seedText[tier]
		for i := 0; i < counts[tier]; i++ {
			v := 0.2 + 0.8*rng.Float64()
			rec := &store.Record{
				AgentID: agentID,
				Tier:    tier,
				Text:    fmt.Sprintf("%s (%d)", texts[rng.IntN(len(texts))], i+1),
				Value:   &v,
			}
			if err := db.AddRecord(rec); err != nil {
				return total, errors.Wrapf(err, "seed %s %d", tier, i)
			}
			total++
		}
	}
	return total, nil
}
