package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VatOperationDirection distinguishes the purchase journal from the sales
// journal of the VAT declaration.
type VatOperationDirection string

const (
	VatInput  VatOperationDirection = "INPUT"  // дневник на покупките
	VatOutput VatOperationDirection = "OUTPUT" // дневник на продажбите
)

// VatPeriod is the (month, year) pair a transaction is declared in,
// derived from vatDate only.
type VatPeriod struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// PeriodOf returns the VAT period a date falls in.
func PeriodOf(t time.Time) VatPeriod {
	return VatPeriod{Month: int(t.Month()), Year: t.Year()}
}

// VATOperation is the raw VAT metadata attached to a journal entry before
// classification.
type VATOperation struct {
	Direction           VatOperationDirection `json:"direction"`
	DocumentTypeCode    string                `json:"documentTypeCode"` // 2-digit PPZDDS code
	PurchaseOperation   string                `json:"purchaseOperation"`
	SalesOperation      string                `json:"salesOperation"`
	AdditionalOperation string                `json:"additionalOperation"`
	AdditionalData      string                `json:"additionalData"`
	BaseAmount          decimal.Decimal       `json:"baseAmount"`
	VatRate             decimal.Decimal       `json:"vatRate"` // 20, 9 or 0
	VatDate             *time.Time            `json:"vatDate"`
	IsEditMode          bool                  `json:"-"`
}

// VatAmount is base × rate / 100, rounded to stotinki.
func (op VATOperation) VatAmount() decimal.Decimal {
	return op.BaseAmount.Mul(op.VatRate).Div(decimal.NewFromInt(100)).Round(2)
}

// TotalAmount is base plus VAT.
func (op VATOperation) TotalAmount() decimal.Decimal {
	return op.BaseAmount.Add(op.VatAmount())
}

// OperationCode pairs a NAP operation code with its Bulgarian description.
type OperationCode struct {
	Code   string
	Name   string
	Legacy bool // single-digit pre-NAP code, accepted only on historic records
}

// VatCodeNone is the sentinel meaning "no operation chosen yet". Rate-based
// auto-suggestion fires only while the stored code equals this sentinel.
const VatCodeNone = "0"

// PurchaseOperations are the NAP purchase-journal columns plus the legacy
// numeric codes kept so historic records stay readable in edit mode.
var PurchaseOperations = []OperationCode{
	{Code: VatCodeNone, Name: "Не влиза в дневника"},
	{Code: "пок09", Name: "Доставки без право на данъчен кредит"},
	{Code: "пок10", Name: "Облагаеми доставки с право на пълен ДК"},
	{Code: "пок12", Name: "Облагаеми доставки с право на частичен ДК"},
	{Code: "пок14", Name: "Годишна корекция"},
	{Code: "пок15", Name: "Придобиване от тристранна операция"},
	{Code: "1", Name: "Пълен данъчен кредит (стар код)", Legacy: true},
	{Code: "2", Name: "Частичен данъчен кредит (стар код)", Legacy: true},
	{Code: "3", Name: "Без данъчен кредит (стар код)", Legacy: true},
	{Code: "4", Name: "Годишна корекция (стар код)", Legacy: true},
	{Code: "5", Name: "Тристранна операция (стар код)", Legacy: true},
	{Code: "6", Name: "Внос (стар код)", Legacy: true},
}

// SalesOperations are the NAP sales-journal columns plus legacy codes.
var SalesOperations = []OperationCode{
	{Code: VatCodeNone, Name: "Не влиза в дневника"},
	{Code: "про11", Name: "Облагаеми доставки със ставка 20%"},
	{Code: "про12", Name: "Начислен данък в други случаи"},
	{Code: "про13", Name: "ВОП - вътреобщностно придобиване"},
	{Code: "про17", Name: "Облагаеми доставки със ставка 9%"},
	{Code: "про19", Name: "Доставки със ставка 0% по глава трета"},
	{Code: "про20", Name: "ВОД - вътреобщностна доставка"},
	{Code: "про22", Name: "Услуги по чл.21, ал.2"},
	{Code: "про24-1", Name: "Освободени доставки"},
	{Code: "1", Name: "Облагаема доставка 20% (стар код)", Legacy: true},
	{Code: "2", Name: "Облагаема доставка 9% (стар код)", Legacy: true},
	{Code: "3", Name: "Доставка 0% (стар код)", Legacy: true},
	{Code: "4", Name: "ВОД (стар код)", Legacy: true},
	{Code: "5", Name: "ВОП (стар код)", Legacy: true},
	{Code: "6", Name: "Освободена доставка (стар код)", Legacy: true},
}

// VatDocumentTypes are the 2-digit PPZDDS document type codes.
var VatDocumentTypes = map[string]string{
	"01": "Фактура",
	"02": "Дебитно известие",
	"03": "Кредитно известие",
	"07": "Митническа декларация",
	"09": "Протокол",
	"11": "Фактура - касова отчетност",
	"81": "Отчет за извършени продажби",
	"82": "Отчет за продажби - специален ред",
}
