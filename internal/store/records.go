package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lazypower/neurograph/internal/graph"
)

// ErrUnknownTier is returned for a tier that has no table.
var ErrUnknownTier = errors.New("unknown record tier")

// tierTable describes where one record tier lives. The text and value
// columns differ per tier; everything else is shared.
type tierTable struct {
	table    string
	textCol  string
	valueCol string
}

var tiers = map[graph.NodeType]tierTable{
	graph.TypeExperience: {"experiences", "summary", "importance"},
	graph.TypePattern:    {"patterns", "description", "confidence"},
	graph.TypeKnowledge:  {"knowledge", "content", "confidence"},
}

// Tiers lists the record tiers in build order.
func Tiers() []graph.NodeType {
	return []graph.NodeType{graph.TypeExperience, graph.TypePattern, graph.TypeKnowledge}
}

// ParseTier maps a plural or singular tier name ("patterns", "pattern") to
// its node type.
func ParseTier(name string) (graph.NodeType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "experience", "experiences":
		return graph.TypeExperience, nil
	case "pattern", "patterns":
		return graph.TypePattern, nil
	case "knowledge":
		return graph.TypeKnowledge, nil
	}
	return "", errors.Wrapf(ErrUnknownTier, "%q", name)
}

// Agent owns a set of learning records.
type Agent struct {
	ID        string
	Name      string
	CreatedAt int64
}

// Record is one row from any tier table.
type Record struct {
	ID        string
	AgentID   string
	Tier      graph.NodeType
	Text      string
	Value     *float64 // importance for experiences, confidence otherwise
	CreatedAt int64
}

// CreateAgent inserts a new agent with a generated id.
func (db *DB) CreateAgent(name string) (*Agent, error) {
	a := &Agent{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UnixMilli(),
	}
	if _, err := db.Exec(`INSERT INTO agents (id, name, created_at) VALUES (?, ?, ?)`,
		a.ID, a.Name, a.CreatedAt); err != nil {
		return nil, errors.Wrap(err, "insert agent")
	}
	return a, nil
}

// GetAgent returns the agent with id, or nil if it does not exist.
func (db *DB) GetAgent(id string) (*Agent, error) {
	var a Agent
	err := db.QueryRow(`SELECT id, name, created_at FROM agents WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get agent")
	}
	return &a, nil
}

// ListAgents returns all agents, oldest first.
func (db *DB) ListAgents() ([]Agent, error) {
	rows, err := db.Query(`SELECT id, name, created_at FROM agents ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.Wrap(err, "list agents")
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		var a Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan agent")
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// AddRecord stores a record in the tier's table and fills in its id and
// creation time. An empty AgentID stores an unowned record.
func (db *DB) AddRecord(r *Record) error {
	t, ok := tiers[r.Tier]
	if !ok {
		return errors.Wrapf(ErrUnknownTier, "%q", r.Tier)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now().UnixMilli()

	_, err := db.Exec(`INSERT INTO `+t.table+` (id, agent_id, `+t.textCol+`, `+t.valueCol+`, created_at)
		VALUES (?, NULLIF(?, ''), ?, ?, ?)`,
		r.ID, r.AgentID, r.Text, r.Value, r.CreatedAt)
	if err != nil {
		return errors.Wrapf(err, "insert %s", r.Tier)
	}
	return nil
}

// ListRecords returns a tier's records in insertion order. An empty agentID
// lists every record; limit <= 0 means no limit.
func (db *DB) ListRecords(tier graph.NodeType, agentID string, limit int) ([]Record, error) {
	t, ok := tiers[tier]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTier, "%q", tier)
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := db.Query(`
		SELECT id, COALESCE(agent_id, ''), `+t.textCol+`, `+t.valueCol+`, created_at
		FROM `+t.table+`
		WHERE (? = '' OR agent_id = ?)
		ORDER BY created_at, rowid
		LIMIT ?`, agentID, agentID, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", tier)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r := Record{Tier: tier}
		var v sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.AgentID, &r.Text, &v, &r.CreatedAt); err != nil {
			return nil, errors.Wrapf(err, "scan %s", tier)
		}
		if v.Valid {
			f := v.Float64
			r.Value = &f
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRecords returns how many records each tier holds for agentID (all
// agents when empty).
func (db *DB) CountRecords(agentID string) (map[graph.NodeType]int, error) {
	counts := make(map[graph.NodeType]int, len(tiers))
	for _, tier := range Tiers() {
		var n int
		err := db.QueryRow(`SELECT COUNT(*) FROM `+tiers[tier].table+` WHERE (? = '' OR agent_id = ?)`,
			agentID, agentID).Scan(&n)
		if err != nil {
			return nil, errors.Wrapf(err, "count %s", tier)
		}
		counts[tier] = n
	}
	return counts, nil
}

// LoadRecords gathers everything the graph builder needs for agentID. When
// agentID names an existing agent it becomes the hub of the graph.
func (db *DB) LoadRecords(agentID string) (graph.Records, error) {
	var recs graph.Records

	if agentID != "" {
		a, err := db.GetAgent(agentID)
		if err != nil {
			return recs, err
		}
		if a != nil {
			recs.Agent = &graph.Agent{ID: a.ID, Name: a.Name}
		}
	}

	for _, tier := range Tiers() {
		rows, err := db.ListRecords(tier, agentID, 0)
		if err != nil {
			return recs, err
		}
		for _, r := range rows {
			switch tier {
			case graph.TypeExperience:
				recs.Experiences = append(recs.Experiences, graph.Experience{ID: r.ID, Summary: r.Text, Importance: r.Value})
			case graph.TypePattern:
				recs.Patterns = append(recs.Patterns, graph.Pattern{ID: r.ID, Description: r.Text, Confidence: r.Value})
			case graph.TypeKnowledge:
				recs.Knowledge = append(recs.Knowledge, graph.Knowledge{ID: r.ID, Content: r.Text, Confidence: r.Value})
			}
		}
	}
	return recs, nil
}
