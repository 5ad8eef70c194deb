package parser

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/dosecare/dosecare-backend/internal/apperr"
	"github.com/dosecare/dosecare-backend/internal/logger"
)

// Mode selects which recognized payload shape Parse expects.
const (
	ModeDocument = "prescription"
	ModeEnvelope = "envelope"
)

// UnknownHospital is used when the recognizer did not find an institution name.
const UnknownHospital = "Unknown hospital"

// ParsedItem is one medicine line lifted off a prescription image.
// Classification is only present in envelope mode; document mode resolves it
// later against the catalog.
type ParsedItem struct {
	Name           string
	Classification string
	DoseCount      int
	DoseDays       int
}

type ParsedPrescription struct {
	Hospital string
	Items    []ParsedItem
}

type Parser interface {
	Parse(raw []byte, mode string) (*ParsedPrescription, error)
}

type parser struct {
	log *logger.Logger
}

func New(baseLog *logger.Logger) Parser {
	return &parser{log: baseLog.With("service", "PrescriptionParser")}
}

func (p *parser) Parse(raw []byte, mode string) (*ParsedPrescription, error) {
	switch mode {
	case ModeDocument:
		return p.parseDocument(raw)
	case ModeEnvelope:
		return p.parseEnvelope(raw)
	default:
		return nil, apperr.Parse("unknown parse mode "+mode, nil)
	}
}

// ---- document mode (category tree) ----

type docCategory struct {
	Category string        `json:"category"`
	Value    string        `json:"value"`
	Sub      []docCategory `json:"sub"`
}

type docPayload struct {
	Result struct {
		Images []struct {
			Result struct {
				Cl []docCategory `json:"cl"`
			} `json:"result"`
		} `json:"images"`
	} `json:"result"`
}

func (p *parser) parseDocument(raw []byte) (*ParsedPrescription, error) {
	var payload docPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperr.Parse("unparsable document payload", err)
	}
	if len(payload.Result.Images) == 0 {
		return nil, apperr.Parse("document payload has no images", nil)
	}

	categories := payload.Result.Images[0].Result.Cl
	hospital := UnknownHospital
	for _, c := range categories {
		if c.Category == "institution name" && strings.TrimSpace(c.Value) != "" {
			hospital = strings.TrimSpace(c.Value)
			break
		}
	}

	var items []ParsedItem
	for _, c := range categories {
		if c.Category != "prescribed medicine name" {
			continue
		}
		sub := map[string]string{}
		for _, s := range c.Sub {
			if _, ok := sub[s.Category]; !ok {
				sub[s.Category] = s.Value
			}
		}
		item := ParsedItem{
			Name:      strings.TrimSpace(c.Value),
			DoseCount: atoiDefault(sub["daily dose count"], 0),
			DoseDays:  atoiDefault(sub["total dose days"], 0),
		}
		if item.DoseDays < 1 {
			item.DoseDays = 1
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, apperr.Parse("document payload has no medicine entries", nil)
	}
	return &ParsedPrescription{Hospital: hospital, Items: items}, nil
}

// ---- envelope mode (flat fields + regex) ----

type envelopePayload struct {
	Images []struct {
		Fields []struct {
			Name string `json:"name"`
			Text string `json:"text"`
		} `json:"fields"`
	} `json:"images"`
}

// medicineLine matches "name\n[classification]" pairs in the medicine block.
var medicineLine = regexp.MustCompile(`(.*)\n\[(.*?)\]`)

func (p *parser) parseEnvelope(raw []byte) (*ParsedPrescription, error) {
	var payload envelopePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperr.Parse("unparsable envelope payload", err)
	}
	if len(payload.Images) == 0 {
		return nil, apperr.Parse("envelope payload has no images", nil)
	}

	fields := map[string]string{}
	for _, f := range payload.Images[0].Fields {
		if _, ok := fields[f.Name]; !ok {
			fields[f.Name] = f.Text
		}
	}

	hospital := strings.TrimSpace(fields["hospital"])
	if hospital == "" {
		hospital = UnknownHospital
	}

	medicineBlock, ok := fields["medicine"]
	if !ok {
		return nil, apperr.Parse("envelope payload missing medicine field", nil)
	}

	var names, classifications []string
	for _, m := range medicineLine.FindAllStringSubmatch(medicineBlock, -1) {
		names = append(names, strings.TrimSpace(m[1]))
		classifications = append(classifications, strings.TrimSpace(m[2]))
	}
	if len(names) == 0 {
		return nil, apperr.Parse("envelope medicine block matched no entries", nil)
	}

	doseBlock, ok := fields["dosage"]
	if !ok {
		return nil, apperr.Parse("envelope payload missing dosage field", nil)
	}

	// Each dosage line is "<amount> <count> <days>"; the amount is ignored.
	var doseCounts, doseDays []int
	for _, line := range strings.Split(doseBlock, "\n") {
		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) < 3 {
			continue
		}
		doseCounts = append(doseCounts, atoiDefault(parts[1], 0))
		doseDays = append(doseDays, atoiDefault(parts[2], 0))
	}

	count := len(names)
	if len(doseCounts) < count {
		count = len(doseCounts)
	}
	if count != len(names) || count != len(doseCounts) {
		p.log.Warn("Envelope medicine and dosage lists disagree, truncating",
			"medicines", len(names),
			"dosage_lines", len(doseCounts),
		)
	}
	if count == 0 {
		return nil, apperr.Parse("envelope dosage block matched no entries", nil)
	}

	items := make([]ParsedItem, 0, count)
	for i := 0; i < count; i++ {
		item := ParsedItem{
			Name:           names[i],
			Classification: classifications[i],
			DoseCount:      doseCounts[i],
			DoseDays:       doseDays[i],
		}
		if item.DoseDays < 1 {
			item.DoseDays = 1
		}
		items = append(items, item)
	}
	return &ParsedPrescription{Hospital: hospital, Items: items}, nil
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
