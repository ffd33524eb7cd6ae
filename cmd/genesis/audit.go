package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/ngx-platform/genesis/pkg/audit"
	"github.com/ngx-platform/genesis/pkg/config"
	"github.com/ngx-platform/genesis/pkg/core"
)

func runAudit(ctx context.Context, global globalFlags, cfg *config.Config, args []string) {
	if len(args) == 0 || args[0] != "list" {
		fatal(fmt.Errorf("usage: genesis audit list [--run <id>] [--complexity <tier>] [--collaboration <type>] [--limit N]"))
	}

	cmd := flag.NewFlagSet("audit list", flag.ContinueOnError)
	runID := cmd.String("run", "", "filter by run id")
	complexity := cmd.String("complexity", "", "filter by complexity tier")
	collaboration := cmd.String("collaboration", "", "filter by collaboration type")
	limit := cmd.Int("limit", 0, "maximum records to return")
	if err := cmd.Parse(args[1:]); err != nil {
		fatal(err)
	}
	ensureNoArgs(cmd.Args())

	store, err := audit.Open(cfg.Audit.Path)
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	listCtx, cancel := context.WithTimeout(ctx, global.Timeout)
	defer cancel()

	records, err := store.List(listCtx, audit.Filter{
		RunID:         *runID,
		Complexity:    core.ComplexityTier(*complexity),
		Collaboration: core.CollaborationType(*collaboration),
		Limit:         *limit,
	})
	if err != nil {
		fatal(err)
	}

	if global.JSON {
		printJSON(records)
		return
	}

	writer := newTabWriter()
	writeRow(writer, "CREATED", "RUN", "COMPLEXITY", "COLLABORATION", "CONSENSUS", "AGENTS", "ELAPSED")
	for _, rec := range records {
		writeRow(writer,
			rec.CreatedAt.UTC().Format(time.RFC3339),
			rec.RunID,
			string(rec.Complexity),
			string(rec.Collaboration),
			strconv.FormatFloat(rec.ConsensusLevel, 'f', 2, 64),
			joinAgents(rec.ParticipatingAgents),
			rec.ExecutionTime.Round(time.Millisecond).String(),
		)
	}
	if err := writer.Flush(); err != nil {
		fatal(err)
	}
}

func runRegistry(global globalFlags, cfg *config.Config, args []string) {
	if len(args) == 0 || args[0] != "list" {
		fatal(fmt.Errorf("usage: genesis registry list"))
	}
	ensureNoArgs(args[1:])

	reg, err := loadRegistry(cfg)
	if err != nil {
		fatal(err)
	}

	type topicEntry struct {
		Topic    string         `json:"topic"`
		Keywords []string       `json:"keywords"`
		Agents   []core.AgentID `json:"agents"`
	}

	topics := reg.Topics()
	entries := make([]topicEntry, 0, len(topics))
	for _, topic := range topics {
		entries = append(entries, topicEntry{
			Topic:    topic,
			Keywords: reg.Keywords(topic),
			Agents:   reg.AgentsForTopic(topic),
		})
	}

	if global.JSON {
		printJSON(map[string]any{
			"topics":        entries,
			"default_agent": reg.DefaultAgent(),
		})
		return
	}

	writer := newTabWriter()
	writeRow(writer, "TOPIC", "AGENTS", "PRIORITY", "HEALTH", "KEYWORDS")
	for _, entry := range entries {
		for _, agent := range entry.Agents {
			writeRow(writer,
				entry.Topic,
				string(agent),
				strconv.Itoa(reg.Priority(agent)),
				strconv.FormatBool(reg.HealthAdjacent(agent)),
				strconv.Itoa(len(entry.Keywords)),
			)
		}
	}
	if err := writer.Flush(); err != nil {
		fatal(err)
	}
	fmt.Printf("default agent: %s\n", reg.DefaultAgent())
}
