package usage

import (
	"errors"
	"testing"
)

const dashboardHTML = `
<html><body>
	<div class="dashboard">
		<section class="usage-section">
			<h3><span>Included-Request Usage</span></h3>
			<div class="usage-figures">
				<div class="bar"></div>
				<p><span>281</span> / <span>500</span> fast requests used</p>
			</div>
		</section>
		<section class="usage-section">
			<h3><span>On-Demand Usage</span></h3>
			<div class="usage-figures">
				<p>$<span>3.50</span> / $<span>10</span></p>
			</div>
		</section>
		<div role="table" class="dashboard-table">
			<div role="row" class="dashboard-table-row">
				<div role="cell"><span title="Aug 31, 2026 at 9:12 AM">31 minutes ago</span></div>
				<div role="cell"><span>Chat</span></div>
				<div role="cell"><span>Included</span></div>
				<div role="cell"><span title="claude-4.5-opus-high-thinking">claude-4.5-opus-hi...</span><span class="badge">Max</span></div>
			</div>
			<div role="row" class="dashboard-table-row">
				<div role="cell"><span title="Aug 31, 2026 at 8:47 AM">56 minutes ago</span></div>
				<div role="cell"><span>Chat</span></div>
				<div role="cell"><span>Included</span></div>
				<div role="cell"><span title="gpt-5">gpt-5</span></div>
			</div>
		</div>
	</div>
</body></html>`

const dashboardNoIncludedHTML = `
<html><body>
	<div class="dashboard">
		<section class="usage-section">
			<h3><span>On-Demand Usage</span></h3>
			<p>$<span>1.25</span> / $<span>20.50</span></p>
		</section>
		<div role="table" class="dashboard-table">
			<div role="row" class="dashboard-table-row">
				<div role="cell"><span title="Aug 30, 2026 at 4:01 PM">yesterday</span></div>
				<div role="cell"><span>Chat</span></div>
				<div role="cell"><span>Usage-based</span></div>
				<div role="cell"><span title="gpt-5">gpt-5</span></div>
			</div>
		</div>
	</div>
</body></html>`

const dashboardNoRowsHTML = `
<html><body>
	<section><h3>Included-Request Usage</h3><p>0 / 500</p></section>
	<section><h3>On-Demand Usage</h3><p>$0 / $10</p></section>
</body></html>`

const dashboardMaximilianHTML = `
<html><body>
	<section><h3>Included-Request Usage</h3><p>12 / 500</p></section>
	<div role="row" class="dashboard-table-row">
		<div role="cell"><span>just now</span></div>
		<div role="cell"><span>Chat by Maximilian</span></div>
		<div role="cell"><span>Included</span></div>
		<div role="cell"><span title="gpt-5">gpt-5</span></div>
	</div>
</body></html>`

const dashboardShortRowHTML = `
<html><body>
	<section><h3>Included-Request Usage</h3><p>12 / 500</p></section>
	<div role="row" class="dashboard-table-row">
		<div role="cell"><span>just now</span></div>
		<div role="cell"><span class="badge">MAX</span></div>
	</div>
</body></html>`

func TestExtract(t *testing.T) {
	s, err := Extract(dashboardHTML)
	if err != nil {
		t.Fatalf("expected no error but got %v", err)
	}
	if s.IncludedUsed != 281 || s.IncludedTotal != 500 {
		t.Errorf("expected included usage 281/500 but got %d/%d", s.IncludedUsed, s.IncludedTotal)
	}
	if s.OnDemandUsed != 3.5 || s.OnDemandLimit != 10 {
		t.Errorf("expected on-demand usage 3.5/10 but got %v/%v", s.OnDemandUsed, s.OnDemandLimit)
	}
	if s.LastModel != "claude-4.5-opus-high-thinking" {
		t.Errorf("expected model from title attribute but got %q", s.LastModel)
	}
	if s.LastTimestamp != "Aug 31, 2026 at 9:12 AM" {
		t.Errorf("expected timestamp from title attribute but got %q", s.LastTimestamp)
	}
	if !s.ThinkingMode {
		t.Error("expected thinking mode to be detected")
	}
	if !s.MaxMode {
		t.Error("expected max mode to be detected")
	}
}

func TestExtractUsesFirstRowOnly(t *testing.T) {
	s, err := Extract(dashboardHTML)
	if err != nil {
		t.Fatalf("expected no error but got %v", err)
	}
	if s.LastModel == "gpt-5" {
		t.Error("expected the most recent row, not a later one")
	}
}

func TestExtractMissingIncludedFigure(t *testing.T) {
	s, err := Extract(dashboardNoIncludedHTML)
	if err != nil {
		t.Fatalf("expected no error but got %v", err)
	}
	if s.IncludedUsed != 0 || s.IncludedTotal != 0 {
		t.Errorf("expected included usage to default to 0/0 but got %d/%d", s.IncludedUsed, s.IncludedTotal)
	}
	if s.OnDemandUsed != 1.25 || s.OnDemandLimit != 20.5 {
		t.Errorf("expected on-demand usage 1.25/20.5 but got %v/%v", s.OnDemandUsed, s.OnDemandLimit)
	}
	if s.LastModel != "gpt-5" {
		t.Errorf("expected remaining fields to be extracted, got model %q", s.LastModel)
	}
	if s.ThinkingMode || s.MaxMode {
		t.Error("expected neither thinking nor max mode")
	}
}

func TestExtractNoRows(t *testing.T) {
	s, err := Extract(dashboardNoRowsHTML)
	if err != nil {
		t.Fatalf("expected no error but got %v", err)
	}
	if s.LastModel != "" || s.LastTimestamp != "" {
		t.Errorf("expected empty row fields but got model %q, timestamp %q", s.LastModel, s.LastTimestamp)
	}
	if s.IncludedTotal != 500 {
		t.Errorf("expected included total 500 but got %d", s.IncludedTotal)
	}
}

func TestExtractMaxNeedsWordBoundary(t *testing.T) {
	s, err := Extract(dashboardMaximilianHTML)
	if err != nil {
		t.Fatalf("expected no error but got %v", err)
	}
	if s.MaxMode {
		t.Error("expected 'Maximilian' not to count as a max badge")
	}
}

func TestExtractMaxOnShortRow(t *testing.T) {
	s, err := Extract(dashboardShortRowHTML)
	if err != nil {
		t.Fatalf("expected no error but got %v", err)
	}
	if s.LastModel != "" {
		t.Errorf("expected no model on a row with too few cells but got %q", s.LastModel)
	}
	if !s.MaxMode {
		t.Error("expected the max badge to be found independently of the cell layout")
	}
}

func TestExtractTimestampFallsBackToText(t *testing.T) {
	markup := `
	<html><body>
		<p>Included-Request Usage 1 / 500</p>
		<div role="row" class="dashboard-table-row">
			<div role="cell"><span>2 hours ago</span></div>
			<div role="cell"><span>Chat</span></div>
			<div role="cell"><span>Included</span></div>
			<div role="cell"><span title="gpt-5">gpt-5</span></div>
		</div>
	</body></html>`
	s, err := Extract(markup)
	if err != nil {
		t.Fatalf("expected no error but got %v", err)
	}
	if s.LastTimestamp != "2 hours ago" {
		t.Errorf("expected visible text fallback but got %q", s.LastTimestamp)
	}
}

func TestExtractEmptyPage(t *testing.T) {
	for _, markup := range []string{"", "<html><body></body></html>"} {
		if _, err := Extract(markup); !errors.Is(err, ErrNoContent) {
			t.Errorf("expected ErrNoContent for %q but got %v", markup, err)
		}
	}
}

func TestIncludedPercentage(t *testing.T) {
	s := Snapshot{IncludedUsed: 250, IncludedTotal: 500}
	if p := s.IncludedPercentage(); p != 50 {
		t.Errorf("expected 50 but got %v", p)
	}
	s = Snapshot{IncludedUsed: 42, IncludedTotal: 0}
	if p := s.IncludedPercentage(); p != 0 {
		t.Errorf("expected 0 for zero total but got %v", p)
	}
}

func TestIncludedRemainingCanBeNegative(t *testing.T) {
	s := Snapshot{IncludedUsed: 520, IncludedTotal: 500}
	if r := s.IncludedRemaining(); r != -20 {
		t.Errorf("expected -20 but got %d", r)
	}
}

func TestDisplayModel(t *testing.T) {
	if m := (Snapshot{}).DisplayModel(); m != "Unknown" {
		t.Errorf("expected Unknown but got %q", m)
	}
	if m := (Snapshot{LastModel: "gpt-5"}).DisplayModel(); m != "gpt-5" {
		t.Errorf("expected gpt-5 but got %q", m)
	}
}
