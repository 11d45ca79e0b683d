// Package output renders the scraper state for human and machine consumers.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/jakopako/cursorwatch/scraper"
	"github.com/jakopako/cursorwatch/utils"
)

const maxModelDisplayLength = 35

// StatusLine condenses a state view into a single human readable line.
func StatusLine(v scraper.View) string {
	switch v.Phase {
	case scraper.PhaseFetching:
		return "fetching..."
	case scraper.PhaseLoggingIn:
		return "waiting for login..."
	case scraper.PhaseError:
		return "error: " + v.LastError
	}
	if !v.Authenticated && v.LastError != "" {
		return v.LastError
	}
	if v.LastFetchTime != "" {
		return "updated at " + v.LastFetchTime
	}
	return "ready"
}

// WriteTable renders the state view as a table.
func WriteTable(out io.Writer, v scraper.View) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Field", "Value"})
	table.SetBorder(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	table.Append([]string{"status", StatusLine(v)})
	table.Append([]string{"logged in", yesNo(v.Authenticated)})
	if s := v.Snapshot; s != nil {
		table.Append([]string{"included", fmt.Sprintf("%d/%d (%.1f%%)", s.IncludedUsed, s.IncludedTotal, s.IncludedPercentage())})
		table.Append([]string{"remaining", strconv.Itoa(s.IncludedRemaining())})
		table.Append([]string{"on-demand", fmt.Sprintf("$%.2f / $%.2f", s.OnDemandUsed, s.OnDemandLimit)})
		table.Append([]string{"model", utils.ShortenString(s.DisplayModel(), maxModelDisplayLength)})
		table.Append([]string{"last request", s.LastTimestamp})
		table.Append([]string{"thinking", yesNo(s.ThinkingMode)})
		table.Append([]string{"max mode", yesNo(s.MaxMode)})
	}
	table.Render()
}

type statusJSON struct {
	Phase         string     `json:"phase"`
	Error         string     `json:"error,omitempty"`
	LoggedIn      bool       `json:"logged_in"`
	LastFetchTime string     `json:"last_fetch_time,omitempty"`
	Usage         *usageJSON `json:"usage,omitempty"`
}

type usageJSON struct {
	IncludedUsed       int     `json:"included_used"`
	IncludedTotal      int     `json:"included_total"`
	IncludedPercentage float64 `json:"included_percentage"`
	IncludedRemaining  int     `json:"included_remaining"`
	OnDemandUsed       float64 `json:"ondemand_used"`
	OnDemandLimit      float64 `json:"ondemand_limit"`
	LastModel          string  `json:"last_model,omitempty"`
	LastTimestamp      string  `json:"last_timestamp,omitempty"`
	ThinkingMode       bool    `json:"thinking_mode"`
	MaxMode            bool    `json:"max_mode"`
}

// WriteJSON renders the state view as json. Html escaping is disabled so
// model names and error messages come out unmangled.
func WriteJSON(out io.Writer, v scraper.View) error {
	status := statusJSON{
		Phase:         string(v.Phase),
		Error:         v.LastError,
		LoggedIn:      v.Authenticated,
		LastFetchTime: v.LastFetchTime,
	}
	if s := v.Snapshot; s != nil {
		status.Usage = &usageJSON{
			IncludedUsed:       s.IncludedUsed,
			IncludedTotal:      s.IncludedTotal,
			IncludedPercentage: s.IncludedPercentage(),
			IncludedRemaining:  s.IncludedRemaining(),
			OnDemandUsed:       s.OnDemandUsed,
			OnDemandLimit:      s.OnDemandLimit,
			LastModel:          s.LastModel,
			LastTimestamp:      s.LastTimestamp,
			ThinkingMode:       s.ThinkingMode,
			MaxMode:            s.MaxMode,
		}
	}

	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(status); err != nil {
		return err
	}
	_, err := out.Write(buffer.Bytes())
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
