package handcrafted

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/gocarina/gocsv"

	"github.com/jwebster45206/lotus-events/pkg/event"
	"github.com/jwebster45206/lotus-events/pkg/player"
)

var ErrMissingColumn = errors.New("missing required column")

// eventRow is one line of the events sheet.
type eventRow struct {
	EventID     string `csv:"event_id"`
	Title       string `csv:"title"`
	Description string `csv:"description"`
	MinTier     int    `csv:"min_tier"`
	MaxTier     int    `csv:"max_tier"`
	IsGeneric   bool   `csv:"is_generic"`
	LifeStage   int    `csv:"life_stage"`
}

// optionRow is one line of the options sheet. Blank numeric cells read as zero.
type optionRow struct {
	EventID    string `csv:"event_id"`
	Text       string `csv:"text"`
	RiskChance int    `csv:"risk_chance"`

	SCSChange           int `csv:"scs_change"`
	FinanceChange       int `csv:"finance_change"`
	CareerLevelChange   int `csv:"career_level_change"`
	GuanxiFamilyChange  int `csv:"guanxi_family_change"`
	GuanxiNetworkChange int `csv:"guanxi_network_change"`
	GuanxiPartyChange   int `csv:"guanxi_party_change"`

	ReqCareerLevel   int `csv:"req_career_level"`
	ReqGuanxiFamily  int `csv:"req_guanxi_family"`
	ReqGuanxiNetwork int `csv:"req_guanxi_network"`
	ReqGuanxiParty   int `csv:"req_guanxi_party"`

	SuccessResult string `csv:"success_result_text"`
	FailureResult string `csv:"failure_result_text"`

	FailSCSChange           int `csv:"fail_scs_change"`
	FailFinanceChange       int `csv:"fail_finance_change"`
	FailCareerLevelChange   int `csv:"fail_career_level_change"`
	FailGuanxiFamilyChange  int `csv:"fail_guanxi_family_change"`
	FailGuanxiNetworkChange int `csv:"fail_guanxi_network_change"`
	FailGuanxiPartyChange   int `csv:"fail_guanxi_party_change"`
}

func newCSVReader(data []byte) *csv.Reader {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	return r
}

// decodeRows unmarshals a sheet with a header line into out. An empty input
// yields no rows.
func decodeRows[T any](r io.Reader, out *[]T, required ...string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	header, err := newCSVReader(data).Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, name := range required {
		if !slices.Contains(header, name) {
			return fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	return gocsv.UnmarshalCSV(newCSVReader(data), out)
}

// ConvertCSV builds the handcrafted event list from an events table and an
// options table. Options are attached to their event in file order. Options
// naming an unknown event are logged and skipped. The result is ordered by
// event_id.
func ConvertCSV(events, options io.Reader, logger *slog.Logger) ([]event.EventData, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var eventRows []eventRow
	if err := decodeRows(events, &eventRows, "event_id", "title", "description", "min_tier", "max_tier", "is_generic", "life_stage"); err != nil {
		return nil, fmt.Errorf("failed to read events csv: %w", err)
	}

	byID := make(map[string]*event.EventData, len(eventRows))
	var ids []string
	for _, row := range eventRows {
		ev := row.toEvent()
		if _, dup := byID[row.EventID]; !dup {
			ids = append(ids, row.EventID)
		}
		byID[row.EventID] = &ev
	}

	var optionRows []optionRow
	if err := decodeRows(options, &optionRows, "event_id", "text"); err != nil {
		return nil, fmt.Errorf("failed to read options csv: %w", err)
	}
	for n, row := range optionRows {
		ev, ok := byID[row.EventID]
		if !ok {
			logger.Warn("Option found for non-existent event", "event_id", row.EventID, "row", n+2)
			continue
		}
		ev.Options = append(ev.Options, row.toOption())
	}

	slices.Sort(ids)
	out := make([]event.EventData, 0, len(ids))
	for _, id := range ids {
		out = append(out, *byID[id])
	}
	logger.Info("Converted handcrafted events", "events", len(out), "options", len(optionRows))
	return out, nil
}

func (r eventRow) toEvent() event.EventData {
	return event.EventData{
		Title:       r.Title,
		Description: r.Description,
		MinTier:     r.MinTier,
		MaxTier:     r.MaxTier,
		LifeStage:   r.LifeStage,
		IsGeneric:   r.IsGeneric,
	}
}

func (r optionRow) toOption() event.EventOption {
	opt := event.EventOption{
		Text:       r.Text,
		RiskChance: r.RiskChance,
		SuccessOutcome: event.EventOutcome{
			SCSChange:           r.SCSChange,
			FinanceChange:       r.FinanceChange,
			CareerLevelChange:   r.CareerLevelChange,
			GuanxiFamilyChange:  r.GuanxiFamilyChange,
			GuanxiNetworkChange: r.GuanxiNetworkChange,
			GuanxiPartyChange:   r.GuanxiPartyChange,
		},
		SuccessResult: r.SuccessResult,
		FailureResult: r.FailureResult,
	}

	for stat, v := range map[string]int{
		player.StatCareerLevel:   r.ReqCareerLevel,
		player.StatGuanxiFamily:  r.ReqGuanxiFamily,
		player.StatGuanxiNetwork: r.ReqGuanxiNetwork,
		player.StatGuanxiParty:   r.ReqGuanxiParty,
	} {
		if v > 0 {
			if opt.Requirements == nil {
				opt.Requirements = make(event.Requirements)
			}
			opt.Requirements[stat] = v
		}
	}

	// A failure outcome that matches success and carries no text is dropped.
	if r.RiskChance > 0 {
		fail := event.EventOutcome{
			SCSChange:           r.FailSCSChange,
			FinanceChange:       r.FailFinanceChange,
			CareerLevelChange:   r.FailCareerLevelChange,
			GuanxiFamilyChange:  r.FailGuanxiFamilyChange,
			GuanxiNetworkChange: r.FailGuanxiNetworkChange,
			GuanxiPartyChange:   r.FailGuanxiPartyChange,
		}
		if fail != opt.SuccessOutcome || opt.FailureResult != "" {
			opt.FailureOutcome = &fail
		}
	}
	return opt
}
