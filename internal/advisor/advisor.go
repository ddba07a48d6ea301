// Package advisor asks a Claude model to summarise partition reports in plain
// language for players.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pvp-damage/internal/config"
	"github.com/cory-johannsen/pvp-damage/internal/report"
)

// ErrEmptySummary is returned when the model responds without any text.
var ErrEmptySummary = errors.New("advisor: empty summary")

const systemPrompt = `You explain Pokemon GO PvP breakpoint and bulkpoint tables to players.
Given a report, state in at most three sentences which IV spreads change the damage,
which damage tier most spreads fall into, and whether the rank 1 spread is a good pick.
Quote stat values with two decimals. Do not restate the whole table.`

// MessageClient is the subset of the Anthropic messages API the advisor uses.
type MessageClient interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Advisor writes report summaries.
type Advisor struct {
	client    MessageClient
	model     anthropic.Model
	maxTokens int64
	logger    *zap.Logger
}

// New creates an Advisor backed by the Anthropic API.
//
// Precondition: cfg.APIKey is non-empty; logger is non-nil.
func New(cfg config.AdvisorConfig, logger *zap.Logger) *Advisor {
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return NewWithClient(&client.Messages, cfg, logger)
}

// NewWithClient creates an Advisor that sends requests through client.
func NewWithClient(client MessageClient, cfg config.AdvisorConfig, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{
		client:    client,
		model:     anthropic.Model(cfg.Model),
		maxTokens: cfg.MaxTokens,
		logger:    logger,
	}
}

// Summarize returns the model's summary of rep.
//
// Postcondition: Returns non-empty text, ErrEmptySummary, or a wrapped API error.
func (a *Advisor) Summarize(ctx context.Context, rep *report.Report) (string, error) {
	var table strings.Builder
	if err := report.Write(&table, rep); err != nil {
		return "", fmt.Errorf("advisor: rendering report: %w", err)
	}

	start := time.Now()
	msg, err := a.client.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(table.String())),
		},
	})
	if err != nil {
		return "", fmt.Errorf("advisor: requesting summary: %w", err)
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			parts = append(parts, strings.TrimSpace(block.Text))
		}
	}
	a.logger.Debug("report summarised",
		zap.String("report", rep.ID.String()),
		zap.String("model", string(a.model)),
		zap.Int("blocks", len(msg.Content)),
		zap.Duration("elapsed", time.Since(start)),
	)
	if len(parts) == 0 {
		return "", ErrEmptySummary
	}
	return strings.Join(parts, "\n"), nil
}

// Annotate sets rep.Summary from Summarize.
func (a *Advisor) Annotate(ctx context.Context, rep *report.Report) error {
	s, err := a.Summarize(ctx, rep)
	if err != nil {
		return err
	}
	rep.Summary = s
	return nil
}
