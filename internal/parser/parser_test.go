package parser

import (
	"testing"

	"github.com/dosecare/dosecare-backend/internal/apperr"
	"github.com/dosecare/dosecare-backend/internal/logger"
)

const documentPayload = `{
  "result": {
    "images": [
      {
        "result": {
          "cl": [
            {"category": "institution name", "value": "Mercy General"},
            {
              "category": "prescribed medicine name",
              "value": "Amoxicillin 500mg",
              "sub": [
                {"category": "daily dose count", "value": "3"},
                {"category": "total dose days", "value": "7"}
              ]
            },
            {
              "category": "prescribed medicine name",
              "value": "Ibuprofen 200mg",
              "sub": [
                {"category": "daily dose count", "value": "2"}
              ]
            }
          ]
        }
      }
    ]
  }
}`

func TestParse_Document(t *testing.T) {
	p := New(logger.NewNop())

	got, err := p.Parse([]byte(documentPayload), ModeDocument)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Hospital != "Mercy General" {
		t.Errorf("hospital = %q, want Mercy General", got.Hospital)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(got.Items))
	}
	first := got.Items[0]
	if first.Name != "Amoxicillin 500mg" || first.DoseCount != 3 || first.DoseDays != 7 {
		t.Errorf("first item = %+v", first)
	}
	// Missing total dose days defaults to 0 and is then clamped to 1.
	second := got.Items[1]
	if second.DoseCount != 2 || second.DoseDays != 1 {
		t.Errorf("second item = %+v", second)
	}
}

func TestParse_Document_NoHospital(t *testing.T) {
	p := New(logger.NewNop())

	payload := `{"result":{"images":[{"result":{"cl":[
	  {"category":"prescribed medicine name","value":"Aspirin","sub":[]}
	]}}]}}`
	got, err := p.Parse([]byte(payload), ModeDocument)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Hospital != UnknownHospital {
		t.Errorf("hospital = %q, want fallback", got.Hospital)
	}
}

func TestParse_Envelope(t *testing.T) {
	p := New(logger.NewNop())

	payload := `{"images":[{"fields":[
	  {"name":"hospital","text":"Riverside Clinic"},
	  {"name":"medicine","text":"Metformin XR\n[antidiabetic]\nLisinopril\n[antihypertensive]"},
	  {"name":"dosage","text":"1 2 30\n1 1 30"}
	]}]}`

	got, err := p.Parse([]byte(payload), ModeEnvelope)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Hospital != "Riverside Clinic" {
		t.Errorf("hospital = %q", got.Hospital)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(got.Items))
	}
	if got.Items[0].Name != "Metformin XR" || got.Items[0].Classification != "antidiabetic" {
		t.Errorf("first item = %+v", got.Items[0])
	}
	if got.Items[0].DoseCount != 2 || got.Items[0].DoseDays != 30 {
		t.Errorf("first item dose = %+v", got.Items[0])
	}
	if got.Items[1].DoseCount != 1 || got.Items[1].DoseDays != 30 {
		t.Errorf("second item dose = %+v", got.Items[1])
	}
}

func TestParse_Envelope_TruncatesToShorterList(t *testing.T) {
	p := New(logger.NewNop())

	payload := `{"images":[{"fields":[
	  {"name":"medicine","text":"Metformin XR\n[antidiabetic]\nLisinopril\n[antihypertensive]"},
	  {"name":"dosage","text":"1 2 30"}
	]}]}`

	got, err := p.Parse([]byte(payload), ModeEnvelope)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(got.Items))
	}
	if got.Hospital != UnknownHospital {
		t.Errorf("hospital = %q, want fallback", got.Hospital)
	}
}

func TestParse_Errors(t *testing.T) {
	p := New(logger.NewNop())

	cases := []struct {
		name    string
		payload string
		mode    string
	}{
		{"bad mode", `{}`, "selfie"},
		{"document garbage", `not json`, ModeDocument},
		{"document no images", `{"result":{"images":[]}}`, ModeDocument},
		{"document no medicines", `{"result":{"images":[{"result":{"cl":[{"category":"institution name","value":"X"}]}}]}}`, ModeDocument},
		{"envelope no images", `{"images":[]}`, ModeEnvelope},
		{"envelope missing medicine", `{"images":[{"fields":[{"name":"dosage","text":"1 2 3"}]}]}`, ModeEnvelope},
		{"envelope no regex match", `{"images":[{"fields":[{"name":"medicine","text":"plain text"},{"name":"dosage","text":"1 2 3"}]}]}`, ModeEnvelope},
		{"envelope missing dosage", `{"images":[{"fields":[{"name":"medicine","text":"A\n[b]"}]}]}`, ModeEnvelope},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Parse([]byte(tc.payload), tc.mode)
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperr.IsKind(err, apperr.KindParse) {
				t.Errorf("error kind = %v, want parse", err)
			}
		})
	}
}
