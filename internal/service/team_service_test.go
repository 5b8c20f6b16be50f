package service

import (
	"testing"

	"github.com/spec-kit/workforce-service/internal/scoring"
)

func TestTeam_Heatmap(t *testing.T) {
	f := newFixture(t)
	heat, err := f.team.Heatmap(f.ctx, f.mia)
	if err != nil {
		t.Fatalf("Heatmap: %v", err)
	}
	if len(heat) != 1 {
		t.Fatalf("teams = %d, want 1", len(heat))
	}
	row := heat[0]
	if row.Team.Name != "Platform" {
		t.Errorf("team = %+v", row.Team)
	}
	// (63 + 2 + 100) / 3 = 55
	if row.Summary.AverageStress != 55 || row.Summary.Status != scoring.StatusRed {
		t.Errorf("summary = %+v", row.Summary)
	}
	if row.Summary.TotalActiveItems != 15 || len(row.Summary.Members) != 3 {
		t.Errorf("totals = %d items, %d members", row.Summary.TotalActiveItems, len(row.Summary.Members))
	}
}

func TestTeam_MemberLoad(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name  string
		id    string
		level scoring.StressStatus
	}{
		{"critical", f.eve.ID, scoring.StatusRed},
		{"many items", f.ana.ID, scoring.StatusYellow},
		{"fine", f.ben.ID, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			load, err := f.team.MemberLoad(f.ctx, f.mia, tc.id)
			if err != nil {
				t.Fatalf("MemberLoad: %v", err)
			}
			switch {
			case tc.level == "" && load.Warning != nil:
				t.Errorf("unexpected warning %+v", load.Warning)
			case tc.level != "" && (load.Warning == nil || load.Warning.Level != tc.level):
				t.Errorf("warning = %+v, want %s", load.Warning, tc.level)
			}
		})
	}

	_, err := f.team.MemberLoad(f.ctx, f.mia, f.cid.ID)
	assertCode(t, err, "FORBIDDEN")
}
