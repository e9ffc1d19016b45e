package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Regime distinguishes the tax regime a status code belongs to.
type Regime int

const (
	RegimeUnknown Regime = iota
	RegimeNormal         // CST
	RegimeSimples        // CSOSN
)

// StatusCode is the tax situation code of a line item. The two regimes
// are mutually exclusive: a code is either a CST (normal regime) or a
// CSOSN (Simples Nacional), never both. The zero value means no code
// was declared.
type StatusCode struct {
	code   string
	regime Regime
}

// CST builds a normal-regime status code.
func CST(code string) StatusCode {
	if code == "" {
		return StatusCode{}
	}
	return StatusCode{code: code, regime: RegimeNormal}
}

// CSOSN builds a Simples Nacional status code.
func CSOSN(code string) StatusCode {
	if code == "" {
		return StatusCode{}
	}
	return StatusCode{code: code, regime: RegimeSimples}
}

// CST returns the code when the normal regime applies.
func (s StatusCode) CST() (string, bool) {
	return s.code, s.regime == RegimeNormal
}

// CSOSN returns the code when Simples Nacional applies.
func (s StatusCode) CSOSN() (string, bool) {
	return s.code, s.regime == RegimeSimples
}

// IsZero reports whether no code was declared.
func (s StatusCode) IsZero() bool { return s.regime == RegimeUnknown }

// String returns the code regardless of regime, for display.
func (s StatusCode) String() string { return s.code }

type statusCodeJSON struct {
	CST   string `json:"cst,omitempty"`
	CSOSN string `json:"csosn,omitempty"`
}

// MarshalJSON emits {"cst": ...} or {"csosn": ...}, or {} when absent.
func (s StatusCode) MarshalJSON() ([]byte, error) {
	var out statusCodeJSON
	switch s.regime {
	case RegimeNormal:
		out.CST = s.code
	case RegimeSimples:
		out.CSOSN = s.code
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON. A payload carrying both
// fields keeps the CST and drops the CSOSN.
func (s *StatusCode) UnmarshalJSON(data []byte) error {
	var in statusCodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch {
	case in.CST != "":
		*s = CST(in.CST)
	case in.CSOSN != "":
		*s = CSOSN(in.CSOSN)
	default:
		*s = StatusCode{}
	}
	return nil
}

// TaxDetail groups the per-item tax sub-records. Each federal tax is
// resolved independently; an item may carry an ICMS variant and no IPI.
type TaxDetail struct {
	TotalTax decimal.Decimal `json:"totalTax"`
	ICMS     ICMS            `json:"icms"`
	IPI      IPI             `json:"ipi"`
	PIS      PIS             `json:"pis"`
	COFINS   COFINS          `json:"cofins"`
}

// ICMS is the uniform field set extracted from whichever ICMSxx /
// ICMSSNxxx variant the source declared. Variant records which one.
type ICMS struct {
	Variant    string          `json:"variant,omitempty"`
	Origin     string          `json:"origin,omitempty"`
	StatusCode StatusCode      `json:"statusCode"`
	Modality   string          `json:"modality,omitempty"`
	Base       decimal.Decimal `json:"base"`
	Rate       decimal.Decimal `json:"rate"`
	Value      decimal.Decimal `json:"value"`
}

// IPI fields come from IPITrib or IPINT, whichever is present.
type IPI struct {
	Variant string          `json:"variant,omitempty"`
	CST     string          `json:"cst,omitempty"`
	Base    decimal.Decimal `json:"base"`
	Rate    decimal.Decimal `json:"rate"`
	Value   decimal.Decimal `json:"value"`
}

// PIS fields come from the first present PISAliq/PISQtde/PISNT/PISOutr.
type PIS struct {
	Variant string          `json:"variant,omitempty"`
	CST     string          `json:"cst,omitempty"`
	Base    decimal.Decimal `json:"base"`
	Rate    decimal.Decimal `json:"rate"`
	Value   decimal.Decimal `json:"value"`
}

// COFINS mirrors PIS for the COFINS sub-variants.
type COFINS struct {
	Variant string          `json:"variant,omitempty"`
	CST     string          `json:"cst,omitempty"`
	Base    decimal.Decimal `json:"base"`
	Rate    decimal.Decimal `json:"rate"`
	Value   decimal.Decimal `json:"value"`
}
