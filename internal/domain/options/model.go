// Package options manages the reference lookup tables selectable when
// documenting a visit or a patient history.
package options

// Kind identifies one of the option tables.
type Kind string

const (
	KindComplaints         Kind = "complaints"
	KindQuadrants          Kind = "quadrants"
	KindOralFindings       Kind = "oral-findings"
	KindTreatments         Kind = "treatments"
	KindMedicines          Kind = "medicines"
	KindInvestigationTypes Kind = "investigation-types"
	KindDentalHistory      Kind = "dental-history"
	KindMedicalHistory     Kind = "medical-history"
	KindAllergies          Kind = "allergies"
)

// Kinds lists every option table, in route registration order.
var Kinds = []Kind{
	KindComplaints, KindQuadrants, KindOralFindings, KindTreatments,
	KindMedicines, KindInvestigationTypes, KindDentalHistory,
	KindMedicalHistory, KindAllergies,
}

type tableInfo struct {
	table       string
	labelCol    string
	hasActive   bool
	hasCategory bool
	// seed-only tables have no create endpoint
	readOnly bool
}

var tables = map[Kind]tableInfo{
	KindComplaints:         {table: "complaint_options", labelCol: "label"},
	KindQuadrants:          {table: "quadrant_options", labelCol: "code", readOnly: true},
	KindOralFindings:       {table: "oral_finding_options", labelCol: "label"},
	KindTreatments:         {table: "treatment_options", labelCol: "label", hasCategory: true},
	KindMedicines:          {table: "medicines", labelCol: "name"},
	KindInvestigationTypes: {table: "investigation_type_options", labelCol: "label", hasActive: true},
	KindDentalHistory:      {table: "dental_history_options", labelCol: "label", hasActive: true},
	KindMedicalHistory:     {table: "medical_history_options", labelCol: "label", hasActive: true},
	KindAllergies:          {table: "allergy_options", labelCol: "label", hasActive: true},
}

func (k Kind) valid() bool {
	_, ok := tables[k]
	return ok
}

// ReadOnly reports whether the kind has no create endpoint.
func (k Kind) ReadOnly() bool { return tables[k].readOnly }

// Option is a row in one of the option tables. Label carries the quadrant
// code and medicine name for those kinds.
type Option struct {
	ID       int64
	Label    string
	Category *string
	Active   bool
}

// render produces the JSON shape for a kind: quadrants expose "code",
// medicines expose "name", treatments include "category".
func (k Kind) render(o Option) map[string]any {
	m := map[string]any{"id": o.ID, tables[k].labelCol: o.Label}
	if tables[k].hasCategory {
		m["category"] = o.Category
	}
	return m
}

func (k Kind) renderAll(opts []Option) []map[string]any {
	out := make([]map[string]any, 0, len(opts))
	for _, o := range opts {
		out = append(out, k.render(o))
	}
	return out
}
