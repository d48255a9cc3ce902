package page

import (
	"errors"
	"strings"
	"testing"
)

const indicator = "Uygun randevu tarihi bulunmamaktadır"

func form(result string) string {
	return `<!DOCTYPE html>
<html><body>
<form>
  <select id="city"><option>Seçiniz</option><option>Ankara</option></select>
  <div id="availableDayInfo">` + result + `</div>
</form>
</body></html>`
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		want   State
		inText string
	}{
		{"indicator present", form("<p>" + indicator + ".</p>"), Unavailable, "bulunmamaktadır"},
		{"indicator different case", form("UYGUN RANDEVU TARIHI BULUNMAMAKTADIR"), Unavailable, ""},
		{"indicator across whitespace", form("Uygun randevu\n   tarihi bulunmamaktadır"), Unavailable, ""},
		{"empty result", form("   "), Unavailable, ""},
		{"dates offered", form("<b>İlk uygun tarih:</b> 12.11.2026"), Available, "12.11.2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Classify(tt.html, "#availableDayInfo", []string{indicator})
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if r.State != tt.want {
				t.Fatalf("State = %v, want %v (text %q)", r.State, tt.want, r.Text)
			}
			if tt.inText != "" && !strings.Contains(r.Text, tt.inText) {
				t.Errorf("Text = %q, want it to contain %q", r.Text, tt.inText)
			}
		})
	}
}

func TestClassify_KeepsInnerHTML(t *testing.T) {
	r, err := Classify(form("<b>12.11.2026</b>"), "#availableDayInfo", []string{indicator})
	if err != nil {
		t.Fatal(err)
	}
	if r.HTML != "<b>12.11.2026</b>" {
		t.Fatalf("HTML = %q", r.HTML)
	}
}

func TestClassify_MissingElement(t *testing.T) {
	_, err := Classify(`<html><body><p>maintenance</p></body></html>`, "#availableDayInfo", []string{indicator})
	var se *StructureError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StructureError, got %v", err)
	}
	if se.Step != "read" || se.Selector != "#availableDayInfo" {
		t.Errorf("StructureError = %+v", se)
	}
}

func TestStructureError_Message(t *testing.T) {
	base := errors.New("timeout")
	err := &StructureError{Step: "select", Selector: "#city", URL: "https://x.example", Err: base}
	if !errors.Is(err, base) {
		t.Fatal("Unwrap should expose the cause")
	}
	want := `page structure: select "#city" on https://x.example: timeout`
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestState_String(t *testing.T) {
	if Available.String() != "available" || Unavailable.String() != "unavailable" {
		t.Fatal("unexpected State strings")
	}
}
