package llm

import (
	"context"
	"testing"
)

func TestHeuristicParserTable(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  ParsedQuery
	}{
		{
			name:  "full surface request",
			query: "relax a 3x3x4 Cu(100) slab with 10A vacuum",
			want: ParsedQuery{
				TaskType: "surface", MaterialFormula: "Cu", Face: "100",
				SupercellX: 3, SupercellY: 3, SupercellZ: 4,
				VacuumThickness: 10, Relax: true,
			},
		},
		{
			name:  "microscopy request",
			query: "generate a Pt(111) surface and run an STM simulation",
			want: ParsedQuery{
				TaskType: "microscopy", MaterialFormula: "Pt", Face: "111",
				MicroscopyType: "STM",
			},
		},
		{
			name:  "graphene",
			query: "build a graphene sheet and relax it",
			want: ParsedQuery{
				TaskType: "surface", MaterialFormula: "C", Face: "graphene",
				Relax: true,
			},
		},
		{
			name:  "2d material",
			query: "make a 2x2 MoS2 monolayer",
			want: ParsedQuery{
				TaskType: "surface", MaterialFormula: "MoS2", Face: "2d",
				SupercellX: 2, SupercellY: 2,
			},
		},
		{
			name:  "face defaulted",
			query: "optimize an Au slab",
			want: ParsedQuery{
				TaskType: "surface", MaterialFormula: "Au", Face: "111",
				Relax: true,
			},
		},
	}

	var parser HeuristicParser
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got.TaskType != tt.want.TaskType {
				t.Errorf("task type = %s, want %s", got.TaskType, tt.want.TaskType)
			}
			if got.MaterialFormula != tt.want.MaterialFormula {
				t.Errorf("material = %s, want %s", got.MaterialFormula, tt.want.MaterialFormula)
			}
			if got.Face != tt.want.Face {
				t.Errorf("face = %s, want %s", got.Face, tt.want.Face)
			}
			if got.SupercellX != tt.want.SupercellX || got.SupercellY != tt.want.SupercellY ||
				got.SupercellZ != tt.want.SupercellZ {
				t.Errorf("size = %v, want %v", got.Size(), tt.want.Size())
			}
			if got.VacuumThickness != tt.want.VacuumThickness {
				t.Errorf("vacuum = %f, want %f", got.VacuumThickness, tt.want.VacuumThickness)
			}
			if got.Relax != tt.want.Relax {
				t.Errorf("relax = %v, want %v", got.Relax, tt.want.Relax)
			}
			if got.MicroscopyType != tt.want.MicroscopyType {
				t.Errorf("microscopy = %s, want %s", got.MicroscopyType, tt.want.MicroscopyType)
			}
		})
	}
}

func TestHeuristicParserUnknownMaterial(t *testing.T) {
	var parser HeuristicParser
	if _, err := parser.Parse(context.Background(), "simulate some unobtainium"); err == nil {
		t.Fatal("expected error for unknown material")
	}
}

func TestHeuristicParserAmbiguityNoted(t *testing.T) {
	var parser HeuristicParser
	got, err := parser.Parse(context.Background(), "build a Ni surface")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(got.Ambiguities) == 0 {
		t.Error("expected a recorded ambiguity for the defaulted face")
	}
	if got.Confidence >= 0.9 {
		t.Errorf("confidence = %f, want reduced confidence when defaulting", got.Confidence)
	}
}
