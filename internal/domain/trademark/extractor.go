package trademark

import (
	"regexp"
	"strings"
)

// Field names used by the extractor cascade table and its partial results.
const (
	FieldApplicationNumber = "application_number"
	FieldMarkName          = "mark_name"
	FieldClass             = "class"
	FieldApplicantName     = "applicant_name"
	FieldApplicantAddress  = "applicant_address"
	FieldGoodsDescription  = "goods_description"
	FieldMarkType          = "mark_type"
	FieldReceptionDate     = "reception_date"
	FieldPublicationDate   = "publication_date"
	FieldCertificateNumber = "certificate_number"
	FieldCertificateDate   = "certificate_date"
	FieldValidityPeriod    = "validity_period"
	FieldAgentName         = "agent_name"
	FieldAgentAddress      = "agent_address"
	FieldPriorityClaim     = "priority_claim"
	FieldLanguageNote      = "language_note"
	FieldColorDescription  = "color_description"
)

// fieldLabels are the Indonesian gazette labels that terminate a free-text
// capture.  RE2 has no lookahead, so captures run to end of line and are then
// truncated at the earliest occurrence of any of these labels.
var fieldLabels = []string{
	"Nomor Permohonan",
	"Tanggal Penerimaan",
	"Nama Pemohon",
	"Alamat Pemohon",
	"Nama Kuasa",
	"Alamat Kuasa",
	"Nama Referensi Label Merek",
	"Label Merek",
	"Tipe Merek",
	"Arti Bahasa",
	"Uraian Warna",
	"Uraian Barang",
	"Kelas Barang",
	"Kelas:",
	"Prioritas",
	"Nomor Pengumuman",
	"Tanggal Pengumuman",
}

// markNameBoilerplateRe strips trailing label boilerplate that bleeds into a
// captured mark name on single-line layouts ("SUPERCOLA Nama Referensi ...").
var markNameBoilerplateRe = regexp.MustCompile(`(?i)\s*(?:Nama\s+Referensi\s+Label\s+Merek|Label\s+Merek|Tipe\s+Merek)\s*:?\s*$`)

// goodsBoilerplateRe strips the trailing "535" style INID codes and stray
// label fragments from a goods description capture.
var goodsBoilerplateRe = regexp.MustCompile(`(?i)\s*(?:\d{3}\s*)?(?:Uraian\s+Barang\s*/?\s*Jasa|Kelas\s+Barang\s*/?\s*Jasa)\s*:?\s*$`)

// classPrefixRe matches a leading "Kelas 25:" style repetition inside a goods
// description, removed when building search text.
var classPrefixRe = regexp.MustCompile(`(?i)^\s*Kelas\s+\d+\s*:\s*`)

// whitespaceRe collapses internal whitespace runs during cleanup.
var whitespaceRe = regexp.MustCompile(`\s+`)

// fieldPattern is one step of a cascade: a compiled expression plus an
// optional group assembler.  When assemble is nil the first capture group is
// taken verbatim.
type fieldPattern struct {
	re       *regexp.Regexp
	assemble func(groups []string) string
}

// assembleDateTime joins (dd, mm, yyyy[, hh, mm, ss]) capture groups into the
// canonical "dd/mm/yyyy hh:mm:ss" form, omitting the time segment when the
// source carries none.
func assembleDateTime(groups []string) string {
	if len(groups) < 4 || groups[1] == "" {
		return ""
	}
	date := groups[1] + "/" + groups[2] + "/" + groups[3]
	if len(groups) >= 7 && groups[4] != "" {
		return date + " " + groups[4] + ":" + groups[5] + ":" + groups[6]
	}
	return date
}

// Extractor turns window text into structured field values by running an
// ordered regex cascade per field: patterns are tried top to bottom and the
// first match wins.  Every extracted value passes through the same cleanup
// pipeline, so downstream consumers never see raw capture text.
type Extractor struct {
	cascades map[string][]fieldPattern
	// freeText marks fields whose captures are truncated at the next
	// gazette label before cleanup.
	freeText map[string]bool
}

// NewExtractor builds the default extractor for DJKI trademark gazettes.
func NewExtractor() *Extractor {
	return &Extractor{
		cascades: map[string][]fieldPattern{
			FieldApplicationNumber: {
				{re: regexp.MustCompile(`(?i)Nomor\s+Permohonan\s*:\s*([A-Z]{0,4}\d{6,})`)},
				{re: regexp.MustCompile(`\b(?:JID|DID|J|D)\s*(\d{9,})\b`), assemble: func(g []string) string { return g[1] }},
				{re: regexp.MustCompile(`\b(\d{10,})\b`)},
			},
			FieldReceptionDate: {
				{re: regexp.MustCompile(`(?i)Tanggal\s+Penerimaan\s*:\s*(\d{2})/(\d{2})/(\d{4})(?:\s+(\d{2}):(\d{2}):(\d{2}))?`), assemble: assembleDateTime},
				{re: regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})\s+(\d{2}):(\d{2}):(\d{2})`), assemble: assembleDateTime},
			},
			FieldMarkName: {
				{re: regexp.MustCompile(`(?i)Nama\s+Referensi\s+Label\s+Merek\s*:\s*([^\n\r]+)`)},
				{re: regexp.MustCompile(`(?i)Nama\s+Merek\s*:\s*([^\n\r]+)`)},
				{re: regexp.MustCompile(`(?i)540\s+Label\s+Merek\s*:?\s*([^\n\r]+)`)},
			},
			FieldClass: {
				{re: regexp.MustCompile(`(?i)(?:511\s+)?Kelas\s+Barang\s*/?\s*Jasa\s*:\s*(\d{1,2})\b`)},
				{re: regexp.MustCompile(`(?i)Kelas\s*:\s*(\d{1,2})\b`)},
			},
			FieldApplicantName: {
				{re: regexp.MustCompile(`(?i)(?:730\s+)?Nama\s+Pemohon\s*:\s*([^\n\r]+)`)},
				{re: regexp.MustCompile(`(?i)Pemohon\s*:\s*([^\n\r]+)`)},
			},
			FieldApplicantAddress: {
				{re: regexp.MustCompile(`(?i)Alamat\s+Pemohon\s*:\s*([^\n\r]+)`)},
			},
			FieldGoodsDescription: {
				{re: regexp.MustCompile(`(?i)(?:510\s+)?Uraian\s+Barang\s*/?\s*Jasa\s*:\s*([^\n\r]+)`)},
			},
			FieldMarkType: {
				{re: regexp.MustCompile(`(?i)Tipe\s+Merek\s*:\s*([^\n\r]+)`)},
			},
			FieldPublicationDate: {
				{re: regexp.MustCompile(`(?i)Tanggal\s+Pengumuman\s*:\s*(\d{2})/(\d{2})/(\d{4})`), assemble: assembleDateTime},
			},
			FieldCertificateNumber: {
				{re: regexp.MustCompile(`(?i)Nomor\s+Pendaftaran\s*:\s*([A-Z]{0,4}\d{6,})`)},
			},
			FieldCertificateDate: {
				{re: regexp.MustCompile(`(?i)Tanggal\s+Pendaftaran\s*:\s*(\d{2})/(\d{2})/(\d{4})`), assemble: assembleDateTime},
			},
			FieldValidityPeriod: {
				{re: regexp.MustCompile(`(?i)(?:Berlaku\s+s/?d|Tanggal\s+Berakhir\s+Perlindungan)\s*:?\s*(\d{2})/(\d{2})/(\d{4})`), assemble: assembleDateTime},
			},
			FieldAgentName: {
				{re: regexp.MustCompile(`(?i)(?:740\s+)?Nama\s+Kuasa\s*:\s*([^\n\r]+)`)},
			},
			FieldAgentAddress: {
				{re: regexp.MustCompile(`(?i)Alamat\s+Kuasa\s*:\s*([^\n\r]+)`)},
			},
			FieldPriorityClaim: {
				{re: regexp.MustCompile(`(?i)(?:320\s+)?(?:Data\s+)?Prioritas\s*:\s*([^\n\r]+)`)},
			},
			FieldLanguageNote: {
				{re: regexp.MustCompile(`(?i)(?:566\s+)?Arti\s+Bahasa\s*:\s*([^\n\r]+)`)},
			},
			FieldColorDescription: {
				{re: regexp.MustCompile(`(?i)(?:591\s+)?Uraian\s+Warna\s*:\s*([^\n\r]+)`)},
			},
		},
		freeText: map[string]bool{
			FieldMarkName:         true,
			FieldApplicantName:    true,
			FieldApplicantAddress: true,
			FieldGoodsDescription: true,
			FieldMarkType:         true,
			FieldAgentName:        true,
			FieldAgentAddress:     true,
			FieldPriorityClaim:    true,
			FieldLanguageNote:     true,
			FieldColorDescription: true,
		},
	}
}

// ExtractField runs the cascade for a single field against text.  It returns
// the cleaned value of the first matching pattern, or "" when no pattern
// matches.
func (e *Extractor) ExtractField(field, text string) string {
	for _, p := range e.cascades[field] {
		groups := p.re.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		var raw string
		if p.assemble != nil {
			raw = p.assemble(groups)
		} else if len(groups) > 1 {
			raw = groups[1]
		} else {
			raw = groups[0]
		}
		if raw == "" {
			continue
		}
		if e.freeText[field] {
			raw = truncateAtLabel(raw, field)
		}
		value := cleanup(raw)
		value = stripBoilerplate(field, value)
		if value != "" {
			return value
		}
	}
	return ""
}

// ExtractAll runs every cascade against text and returns the non-empty
// results keyed by field name.
func (e *Extractor) ExtractAll(text string) map[string]string {
	out := make(map[string]string, len(e.cascades))
	for field := range e.cascades {
		if v := e.ExtractField(field, text); v != "" {
			out[field] = v
		}
	}
	return out
}

// ExtractRecord maps a full cascade run onto a Record entity.
func (e *Extractor) ExtractRecord(text string) *Record {
	fields := e.ExtractAll(text)
	return &Record{
		ApplicationNumber: fields[FieldApplicationNumber],
		MarkName:          fields[FieldMarkName],
		Class:             fields[FieldClass],
		ApplicantName:     fields[FieldApplicantName],
		ApplicantAddress:  fields[FieldApplicantAddress],
		GoodsDescription:  fields[FieldGoodsDescription],
		MarkType:          fields[FieldMarkType],
		ReceptionDate:     fields[FieldReceptionDate],
		PublicationDate:   fields[FieldPublicationDate],
		CertificateNumber: fields[FieldCertificateNumber],
		CertificateDate:   fields[FieldCertificateDate],
		ValidityPeriod:    fields[FieldValidityPeriod],
		AgentName:         fields[FieldAgentName],
		AgentAddress:      fields[FieldAgentAddress],
		PriorityClaim:     fields[FieldPriorityClaim],
		LanguageNote:      fields[FieldLanguageNote],
		ColorDescription:  fields[FieldColorDescription],
	}
}

// truncateAtLabel cuts a free-text capture at the earliest occurrence of any
// other gazette label, so single-line layouts do not bleed neighbouring
// fields into the value.  The label that introduced the field itself is
// skipped at position 0.
func truncateAtLabel(s, field string) string {
	lower := strings.ToLower(s)
	cut := len(s)
	for _, label := range fieldLabels {
		idx := strings.Index(lower, strings.ToLower(label))
		if idx == 0 && ownLabel(field, label) {
			// Value legitimately starts with its own label text; leave it.
			idx = -1
		}
		if idx > 0 && idx < cut {
			cut = idx
		}
	}
	return s[:cut]
}

// ownLabel reports whether label introduces the given field, in which case an
// occurrence at offset zero is part of the match rather than a neighbour.
func ownLabel(field, label string) bool {
	switch field {
	case FieldMarkName:
		return strings.HasPrefix(label, "Nama Referensi") || label == "Label Merek"
	case FieldGoodsDescription:
		return strings.HasPrefix(label, "Uraian Barang")
	default:
		return false
	}
}

// cleanup is the mandatory post-match pipeline applied to every extracted
// value: collapse whitespace runs, remove stray newlines, strip a trailing
// colon, and trim.
func cleanup(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ":")
	return strings.TrimSpace(s)
}

// stripBoilerplate applies the second-pass suffix cleanup for mark names and
// goods descriptions.
func stripBoilerplate(field, s string) string {
	switch field {
	case FieldMarkName:
		return strings.TrimSpace(markNameBoilerplateRe.ReplaceAllString(s, ""))
	case FieldGoodsDescription:
		return strings.TrimSpace(goodsBoilerplateRe.ReplaceAllString(s, ""))
	default:
		return s
	}
}
