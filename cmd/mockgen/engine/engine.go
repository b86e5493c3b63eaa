package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"notary-dash/internal/board"
	"notary-dash/internal/eventlog"
)

type GeneratorConfig struct {
	Scenario string // "steady", "backlog" or "churn"
	Count    int
	Now      time.Time
	Seed     int64
}

// Snapshot is a synthetic board: its event log plus the reference data a report needs.
type Snapshot struct {
	Events  []eventlog.CardEvent
	Lists   []board.ListMeta
	Details []board.CardDetail
}

// Workflow lists in board order. The first is the triage list; the last active one is concluded.
var workflow = []board.ListMeta{
	{ID: "list-triagem", Name: "Triagem", Position: 1024, ExternalAlias: "trello-triagem"},
	{ID: "list-minuta", Name: "Minuta", Position: 2048, ExternalAlias: "trello-minuta"},
	{ID: "list-assinatura", Name: "Aguardando assinatura", Position: 3072, ExternalAlias: "trello-assinatura"},
	{ID: "list-registro", Name: "Registro", Position: 4096, ExternalAlias: "trello-registro"},
	{ID: "list-concluidos", Name: "Concluídos", Position: 5120, ExternalAlias: "trello-concluidos"},
}

var legacyList = board.ListMeta{ID: "list-entrada-balcao", Name: "Entrada balcão", Position: 512, Closed: true, ExternalAlias: "trello-balcao"}

var actTypes = []string{"Escritura", "Procuração", "Ata notarial", "Testamento", "Reconhecimento de firma", ""}

var assignees = []string{"Ana", "Bruno", "Carla", "Diego", ""}

func Generate(cfg GeneratorConfig) Snapshot {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	snap := Snapshot{Lists: append([]board.ListMeta{legacyList}, workflow...)}

	// One arrival every 8 hours, the last one just before Now.
	tArrival := cfg.Now.Add(-time.Duration(cfg.Count*8) * time.Hour)
	var nextID int64

	emit := func(e eventlog.CardEvent) {
		if e.OccurredAt.After(cfg.Now) {
			return
		}
		nextID++
		e.ID = nextID
		snap.Events = append(snap.Events, e)
	}

	for i := 0; i < cfg.Count; i++ {
		cardID := fmt.Sprintf("card-%04d", i+1)
		arrival := tArrival.Add(time.Duration(i*8) * time.Hour)

		// 1. Creation
		start := workflow[0]
		action := "createCard"
		switch r := rng.Float64(); {
		case r < 0.10:
			start = legacyList
			action = "create"
		case r < 0.15:
			action = "copyCard"
		case r < 0.18:
			action = "convertToCardFromCheckItem"
		}
		emit(eventlog.CardEvent{CardID: cardID, ActionType: action, OccurredAt: arrival, ToListID: start.ID, ToListName: start.Name})

		// 2. Walk the workflow; each stage takes a sampled number of days.
		k, lambda := 2.0, 2.0
		switch cfg.Scenario {
		case "backlog":
			lambda = 4.0 + 4.0*float64(i)/float64(cfg.Count)
		case "churn":
			k = 0.8
		}

		current := start
		t := arrival
		archived := false
		for _, next := range workflow[1:] {
			t = t.Add(time.Duration(weibullSample(rng, k, lambda)*24) * time.Hour)
			if t.After(cfg.Now) {
				break
			}
			emit(eventlog.CardEvent{
				CardID: cardID, ActionType: "move", OccurredAt: t,
				FromListID: current.ID, FromListName: current.Name, ToListID: next.ID, ToListName: next.Name,
			})
			current = next

			if cfg.Scenario == "churn" && rng.Float64() < 0.05 {
				break // abandoned mid-way, archived below
			}
		}

		// 3. Concluded cards are archived after a while; churned ones sometimes come back.
		if current.ID == workflow[len(workflow)-1].ID || (cfg.Scenario == "churn" && rng.Float64() < 0.3) {
			t = t.Add(time.Duration(1+rng.Intn(72)) * time.Hour)
			if !t.After(cfg.Now) {
				emit(eventlog.CardEvent{CardID: cardID, ActionType: "archive", OccurredAt: t, FromListID: current.ID, FromListName: current.Name})
				archived = true
				if current.ID != workflow[len(workflow)-1].ID && rng.Float64() < 0.2 {
					t = t.Add(time.Duration(1+rng.Intn(48)) * time.Hour)
					if !t.After(cfg.Now) {
						emit(eventlog.CardEvent{CardID: cardID, ActionType: "unarchive", OccurredAt: t, ToListID: current.ID, ToListName: current.Name})
						archived = false
					}
				}
			}
		}

		// Noise the engine must ignore.
		emit(eventlog.CardEvent{CardID: cardID, ActionType: "commentCard", OccurredAt: arrival.Add(time.Hour)})

		snap.Details = append(snap.Details, detailFor(rng, cardID, start, current, archived))
	}

	sort.SliceStable(snap.Events, func(i, j int) bool {
		return snap.Events[i].OccurredAt.Before(snap.Events[j].OccurredAt)
	})
	return snap
}

func detailFor(rng *rand.Rand, cardID string, created, current board.ListMeta, archived bool) board.CardDetail {
	d := board.CardDetail{
		ID:            cardID,
		ActType:       actTypes[rng.Intn(len(actTypes))],
		AssigneeName:  assignees[rng.Intn(len(assignees))],
		CurrentListID: current.ID,
		IsClosed:      &archived,
	}
	if rng.Float64() < 0.7 {
		v := math.Round(rng.Float64()*500000) / 100
		d.ActValue = &v
	}
	// Half the rows carry the internal id, half only the Trello alias.
	if rng.Intn(2) == 0 {
		d.CreatedListID = created.ID
	} else {
		d.CreatedListAlias = created.ExternalAlias
	}
	return d
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

// Save writes the snapshot in the layout read by `notary-dash report --events-dir`.
func Save(outDir string, boardID string, snap Snapshot) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	store := eventlog.NewEventStore()
	store.Append(boardID, snap.Events)
	if err := store.Save(outDir, boardID); err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(outDir, board.ListsFile), snap.Lists); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, board.DetailsFile), snap.Details); err != nil {
		return err
	}
	return writeJSON(filepath.Join(outDir, board.CurrentFile), currentViews(snap))
}

// currentViews is a minimal stand-in for the dashboard_current RPC: open cards per list.
func currentViews(snap Snapshot) map[string]any {
	names := make(map[string]string, len(snap.Lists))
	for _, l := range snap.Lists {
		names[l.ID] = l.Name
	}
	perList := make(map[string]int)
	open := 0
	for _, d := range snap.Details {
		if d.IsClosed != nil && *d.IsClosed {
			continue
		}
		open++
		perList[names[d.CurrentListID]]++
	}
	return map[string]any{"open_cards": open, "open_by_list": perList}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
