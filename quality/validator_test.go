package quality

import (
	"context"
	"strings"
	"testing"

	"github.com/ZaguanLabs/xlate"
	"github.com/ZaguanLabs/xlate/document"
)

func TestValidate_Pass(t *testing.T) {
	v := NewValidator()
	unit := &document.Unit{
		ID:     "u1",
		Source: `Welcome to <g id="1">our site</g>.`,
		Target: `Bienvenido a <g id="1">nuestro sitio</g>.`,
	}

	report, err := v.Validate(context.Background(), unit, xlate.StyleNeutral, "es_ES")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !report.StructuralPass {
		t.Errorf("structural check failed: %v", report.Issues)
	}
	if !report.Pass {
		t.Errorf("expected pass, got issues: %v", report.Issues)
	}
	if report.RegisterScore < DefaultThreshold {
		t.Errorf("RegisterScore = %f", report.RegisterScore)
	}
}

func TestValidate_DroppedMarker(t *testing.T) {
	v := NewValidator()
	unit := &document.Unit{
		ID:     "u1",
		Source: `Welcome to <g id="1">our site</g>.`,
		Target: `Bienvenido a nuestro sitio.`,
	}

	report, err := v.Validate(context.Background(), unit, xlate.StyleNeutral, "es_ES")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if report.StructuralPass {
		t.Fatal("dropped marker must fail the structural check")
	}
	if report.Pass {
		t.Fatal("structural failure must fail the unit regardless of register")
	}
	if len(report.Issues) != 2 {
		t.Errorf("expected 2 issues (both dropped tags), got %v", report.Issues)
	}
	if !strings.Contains(report.Issues[0], "marker dropped") {
		t.Errorf("issue = %q", report.Issues[0])
	}
}

func TestValidate_ReorderedMarkers(t *testing.T) {
	v := NewValidator()
	unit := &document.Unit{
		ID:     "u1",
		Source: `<b>bold</b> and <i>italic</i>`,
		Target: `<i>cursiva</i> y <b>negrita</b>`,
	}

	report, err := v.Validate(context.Background(), unit, xlate.StyleNeutral, "es_ES")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if report.StructuralPass {
		t.Fatal("reordered markers must fail the structural check")
	}
	if !strings.Contains(report.Issues[0], "marker 0 changed") {
		t.Errorf("issue = %q", report.Issues[0])
	}
}

func TestValidate_AddedMarker(t *testing.T) {
	v := NewValidator()
	unit := &document.Unit{
		ID:     "u1",
		Source: `Plain text`,
		Target: `Texto <b>plano</b>`,
	}

	report, _ := v.Validate(context.Background(), unit, xlate.StyleNeutral, "es_ES")
	if report.StructuralPass {
		t.Fatal("added marker must fail the structural check")
	}
	if !strings.Contains(report.Issues[0], "marker added") {
		t.Errorf("issue = %q", report.Issues[0])
	}
}

func TestValidate_PlaceholderPreserved(t *testing.T) {
	v := NewValidator()
	unit := &document.Unit{
		ID:     "u1",
		Source: `Hello {{name}}, you have %d messages`,
		Target: `Hola {{name}}, tienes %d mensajes`,
	}

	report, _ := v.Validate(context.Background(), unit, xlate.StyleNeutral, "es_ES")
	if !report.StructuralPass {
		t.Errorf("placeholders preserved, got issues: %v", report.Issues)
	}
}

func TestValidate_RegisterBelowThreshold(t *testing.T) {
	v := NewValidator()
	unit := &document.Unit{
		ID:     "u1",
		Source: `Please review the attached report.`,
		Target: `REVISA el informe YA!! No te lo PIERDAS!!!`,
	}

	report, err := v.Validate(context.Background(), unit, xlate.StyleFormal, "es_ES")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !report.StructuralPass {
		t.Errorf("no markers involved, structural should pass: %v", report.Issues)
	}
	if report.Pass {
		t.Error("shouting in a formal register should fail")
	}
	found := false
	for _, issue := range report.Issues {
		if strings.Contains(issue, "below threshold") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a register issue, got %v", report.Issues)
	}
}

func TestValidate_CasualToleratesExpressivePunctuation(t *testing.T) {
	v := NewValidator()
	unit := &document.Unit{
		ID:     "u1",
		Source: `Check this out!`,
		Target: `¡Mira esto! ¡Te va a encantar!`,
	}

	report, _ := v.Validate(context.Background(), unit, xlate.StyleCasual, "es_ES")
	if !report.Pass {
		t.Errorf("casual register should tolerate exclamations: %v", report.Issues)
	}
}

func TestValidate_MarkupStrippedBeforeScoring(t *testing.T) {
	v := NewValidator()
	// The tag content would look like a shouted word if markup leaked into
	// the heuristic input.
	unit := &document.Unit{
		ID:     "u1",
		Source: `<span class="BRAND-NAME">hello</span>`,
		Target: `<span class="BRAND-NAME">hola</span>`,
	}

	report, _ := v.Validate(context.Background(), unit, xlate.StyleFormal, "es_ES")
	if !report.Pass {
		t.Errorf("markup should not feed the register heuristic: %v", report.Issues)
	}
}

type fixedScorer struct{ score float64 }

func (s fixedScorer) Score(ctx context.Context, text, targetLang string, style xlate.TranslationStyle) (float64, error) {
	return s.score, nil
}

func TestValidate_DelegatedScorer(t *testing.T) {
	v := NewValidator(WithRegisterScorer(fixedScorer{score: 0.4}))
	unit := &document.Unit{
		ID:     "u1",
		Source: `Hello`,
		Target: `Hola`,
	}

	report, err := v.Validate(context.Background(), unit, xlate.StyleNeutral, "es_ES")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if report.RegisterScore != 0.4 {
		t.Errorf("RegisterScore = %f, want delegated 0.4", report.RegisterScore)
	}
	if report.Pass {
		t.Error("delegated score below threshold should fail")
	}
}

func TestValidate_CustomThreshold(t *testing.T) {
	v := NewValidator(WithThreshold(0.3), WithRegisterScorer(fixedScorer{score: 0.4}))
	unit := &document.Unit{ID: "u1", Source: "Hello", Target: "Hola"}

	report, _ := v.Validate(context.Background(), unit, xlate.StyleNeutral, "es_ES")
	if !report.Pass {
		t.Error("score above the lowered threshold should pass")
	}
}

func TestValidate_HistoryKeepsSupersededReports(t *testing.T) {
	v := NewValidator()
	unit := &document.Unit{
		ID:     "u1",
		Source: `<b>Hi</b>`,
		Target: `Hola`,
	}

	first, _ := v.Validate(context.Background(), unit, xlate.StyleNeutral, "es_ES")
	if first.Pass {
		t.Fatal("first attempt should fail")
	}

	unit.Target = `<b>Hola</b>`
	second, _ := v.Validate(context.Background(), unit, xlate.StyleNeutral, "es_ES")
	if !second.Pass {
		t.Fatalf("second attempt should pass: %v", second.Issues)
	}

	history := v.History("u1")
	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(history))
	}
	if history[0].Attempt != 1 || history[1].Attempt != 2 {
		t.Errorf("attempts = %d, %d", history[0].Attempt, history[1].Attempt)
	}
	if history[0].Pass {
		t.Error("superseded report must keep its original outcome")
	}
}

func TestStructuralError(t *testing.T) {
	passing := &Report{UnitID: "u1", StructuralPass: true}
	if StructuralError(passing) != nil {
		t.Error("passing report should yield no error")
	}

	failing := &Report{UnitID: "u1", StructuralPass: false, Issues: []string{"marker dropped: <b>"}}
	err := StructuralError(failing)
	if err == nil {
		t.Fatal("failing report should yield an error")
	}
	if !strings.Contains(err.Error(), "u1") {
		t.Errorf("error = %v", err)
	}
}
