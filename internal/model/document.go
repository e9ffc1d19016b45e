package model

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// DocType discriminates the fiscal document kind.
type DocType string

const (
	DocTypeNFe     DocType = "NFe"
	DocTypeCTe     DocType = "CTe"
	DocTypeUnknown DocType = ""
)

// Environment is the tpAmb flag of the document.
type Environment string

const (
	EnvProduction Environment = "1"
	EnvTest       Environment = "2"
)

// Document is the normalized form of a fiscal XML document. It is the
// canonical shape every consumer (rendering, reporting, export) reads.
// Once produced by the parser it is never mutated; derived data is
// always copied out.
type Document struct {
	Type           DocType        `json:"type"`
	Identification Identification `json:"identification"`
	Issuer         Party          `json:"issuer"`
	Recipient      Party          `json:"recipient"`
	LineItems      []LineItem     `json:"lineItems"`
	Totals         Totals         `json:"totals"`
	Transport      Transport      `json:"transport"`
	Billing        []Installment  `json:"billing"`
	Payments       []PaymentInfo  `json:"payments"`
	Change         string         `json:"change,omitempty"`
	AdditionalInfo AdditionalInfo `json:"additionalInfo"`
	Protocol       *Protocol      `json:"protocol,omitempty"`
}

// AccessKey returns the 44-digit key of the document, preferring the
// authorization protocol over the infNFe Id attribute.
func (d *Document) AccessKey() string {
	if d.Protocol != nil && d.Protocol.AccessKey != "" {
		return d.Protocol.AccessKey
	}
	return d.Identification.AccessKey
}

// Identification holds the ide block plus the access key.
type Identification struct {
	AccessKey       string      `json:"accessKey,omitempty"`
	Number          string      `json:"number"`
	Series          string      `json:"series"`
	Model           string      `json:"model"`
	EmissionDate    string      `json:"emissionDate"`
	ExitDate        string      `json:"exitDate,omitempty"`
	OperationNature string      `json:"operationNature"`
	OperationType   string      `json:"operationType,omitempty"`
	Environment     Environment `json:"environment"`
	Municipality    string      `json:"municipality,omitempty"`
	Purpose         string      `json:"purpose,omitempty"`
	EmissionProcess string      `json:"emissionProcess,omitempty"`
	AppVersion      string      `json:"appVersion,omitempty"`
}

// Party identifies the issuer or recipient of a document.
type Party struct {
	CNPJ       string  `json:"cnpj,omitempty"`
	CPF        string  `json:"cpf,omitempty"`
	Name       string  `json:"name"`
	TradeName  string  `json:"tradeName,omitempty"`
	StateRegID string  `json:"stateRegId,omitempty"`
	TaxRegime  string  `json:"taxRegime,omitempty"`
	Address    Address `json:"address"`
}

// TaxID returns whichever of CNPJ or CPF is present.
func (p Party) TaxID() string {
	if p.CNPJ != "" {
		return p.CNPJ
	}
	return p.CPF
}

// Address is a postal address; every field is optional.
type Address struct {
	Street     string `json:"street,omitempty"`
	Number     string `json:"number,omitempty"`
	District   string `json:"district,omitempty"`
	CityCode   string `json:"cityCode,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// LineItem is one det entry, in document order.
type LineItem struct {
	Number      string          `json:"number"`
	Code        string          `json:"code"`
	EAN         string          `json:"ean,omitempty"`
	Description string          `json:"description"`
	NCM         string          `json:"ncm"`
	CFOP        string          `json:"cfop"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitValue   decimal.Decimal `json:"unitValue"`
	Total       decimal.Decimal `json:"total"`
	Discount    decimal.Decimal `json:"discount"`
	Info        string          `json:"info,omitempty"`
	Tax         TaxDetail       `json:"tax"`
}

// Totals carries the declared ICMSTot aggregates. Values are taken from
// the document as-is and never recomputed from line items.
type Totals struct {
	TaxBase      decimal.Decimal `json:"taxBase"`
	TaxValue     decimal.Decimal `json:"taxValue"`
	STBase       decimal.Decimal `json:"stBase"`
	STValue      decimal.Decimal `json:"stValue"`
	Products     decimal.Decimal `json:"products"`
	Freight      decimal.Decimal `json:"freight"`
	Insurance    decimal.Decimal `json:"insurance"`
	Discount     decimal.Decimal `json:"discount"`
	IPI          decimal.Decimal `json:"ipi"`
	PIS          decimal.Decimal `json:"pis"`
	COFINS       decimal.Decimal `json:"cofins"`
	OtherExpense decimal.Decimal `json:"otherExpense"`
	Grand        decimal.Decimal `json:"grand"`
}

// Transport holds the transp block.
type Transport struct {
	FreightMode  string   `json:"freightMode,omitempty"`
	CarrierCNPJ  string   `json:"carrierCnpj,omitempty"`
	CarrierName  string   `json:"carrierName,omitempty"`
	CarrierAddr  string   `json:"carrierAddr,omitempty"`
	CarrierCity  string   `json:"carrierCity,omitempty"`
	CarrierState string   `json:"carrierState,omitempty"`
	VehiclePlate string   `json:"vehiclePlate,omitempty"`
	VehicleState string   `json:"vehicleState,omitempty"`
	Volumes      []Volume `json:"volumes,omitempty"`
}

// Volume is one vol descriptor.
type Volume struct {
	Quantity    string `json:"quantity,omitempty"`
	Kind        string `json:"kind,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Numbering   string `json:"numbering,omitempty"`
	NetWeight   string `json:"netWeight,omitempty"`
	GrossWeight string `json:"grossWeight,omitempty"`
}

// Installment is one dup entry of the cobr block.
type Installment struct {
	Number  string          `json:"number"`
	DueDate string          `json:"dueDate"`
	Value   decimal.Decimal `json:"value"`
}

// PaymentInfo is one detPag entry of the pag block.
type PaymentInfo struct {
	Method string          `json:"method"`
	Value  decimal.Decimal `json:"value"`
}

// AdditionalInfo carries free-text complementary notes.
type AdditionalInfo struct {
	Complementary string `json:"complementary,omitempty"`
	FiscalNote    string `json:"fiscalNote,omitempty"`
}

// Protocol is the authorization protocol (protNFe/infProt). Nil for
// unauthorized or draft documents.
type Protocol struct {
	Environment Environment `json:"environment,omitempty"`
	AppVersion  string      `json:"appVersion,omitempty"`
	AccessKey   string      `json:"accessKey,omitempty"`
	ReceiptTime string      `json:"receiptTime,omitempty"`
	Number      string      `json:"number,omitempty"`
	DigestValue string      `json:"digestValue,omitempty"`
	StatusCode  string      `json:"statusCode,omitempty"`
	StatusText  string      `json:"statusText,omitempty"`
}

var accessKeyRe = regexp.MustCompile(`^[0-9]{44}$`)

// ValidAccessKey reports whether s is exactly 44 numeric digits.
func ValidAccessKey(s string) bool {
	return accessKeyRe.MatchString(s)
}

// CNPJ is 14 digits, CPF 11. Formatting characters are not accepted.
var (
	cnpjRe = regexp.MustCompile(`^[0-9]{14}$`)
	cpfRe  = regexp.MustCompile(`^[0-9]{11}$`)
)

// ValidCNPJ reports whether s is a well-formed CNPJ digit string.
func ValidCNPJ(s string) bool { return cnpjRe.MatchString(s) }

// ValidCPF reports whether s is a well-formed CPF digit string.
func ValidCPF(s string) bool { return cpfRe.MatchString(s) }
