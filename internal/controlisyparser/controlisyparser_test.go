package controlisyparser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"bgledger/kontir/internal/models"
	"bgledger/kontir/internal/vatclass"
)

const purchaseXML = `<?xml version="1.0" encoding="UTF-8"?>
<Export>
  <Contractors>
    <Contractor ca_contractorId="C1" contractorName="МЕТРО АД" contractorEIK="121644736" contractorVATNumber="BG121644736"/>
    <Contractor ca_contractorId="C1" contractorName="МЕТРО АД" contractorEIK="121644736" contractorInsideNumber="42"/>
  </Contractors>
  <Documents>
    <Document accountingMonth="2026-02-01" vatMonth="2026-02-01" documentDate="2026-01-28"
              documentNumber="0000000354" ca_docId="D1" reason="Доставка материали"
              netAmountBGN="100.00" vatAmountBGN="20.00" totalAmountBGN="120.00"
              ca_vatOperationID="5" ca_docTypeID="1" ca_contractorId="C1">
      <Accounting amountBGN="100.00" ca_vatOperationID="5">
        <AccountingDetail direction="Debit" accountNumber="601" accountName="Разходи за материали"/>
        <AccountingDetail direction="Credit" accountNumber="401" accountName="Доставчици" contractorName="МЕТРО АД" contractorEIK="121644736"/>
      </Accounting>
      <Accounting amountBGN="20.00" ca_vatOperationID="5">
        <AccountingDetail direction="Debit" accountNumber="4531" accountName="ДДС покупки"/>
        <AccountingDetail direction="Credit" accountNumber="401" accountName="Доставчици"/>
      </Accounting>
      <VATData vatRegister="1" contractorName="МЕТРО АД" contractorVATNumber="BG121644736">
        <VAT taxBase="100.00" vatRate="20.00" vatAmountBGN="20.00" vatOperationIden="1"/>
      </VATData>
    </Document>
    <Document accountingMonth="2026-02-01" vatMonth="2026-02-01" documentDate="2026-02-03"
              documentNumber="0000000360" ca_docId="D2" reason="Разплащане по фактура"
              totalAmountBGN="120.00" ca_vatOperationID="0" ca_contractorId="C1">
      <Accounting amountBGN="120.00" ca_vatOperationID="0">
        <AccountingDetail direction="Debit" accountNumber="401" accountName="Доставчици"/>
        <AccountingDetail direction="Credit" accountNumber="503" accountName="Разплащателна сметка"/>
      </Accounting>
    </Document>
  </Documents>
</Export>`

func TestParsePurchaseExport(t *testing.T) {
	result, err := Parse([]byte(purchaseXML), "pokupki_02_2026.xml")
	require.NoError(t, err)

	assert.Equal(t, models.SourceControlisy, result.Source)
	assert.Equal(t, string(vatclass.KindPurchase), result.DocumentKind)
	require.Len(t, result.Documents, 2)
	require.Len(t, result.Contractors, 1)

	// the duplicate contractor record agreed on every field, the inside
	// number filled in from the second occurrence
	assert.Equal(t, "42", result.Contractors[0].InsideNumber)
	assert.Empty(t, result.ContractorConflicts)

	// account codes in first-seen order
	assert.Equal(t, []string{"601", "401", "4531", "503"}, result.AccountCodes)

	doc := result.Documents[0]
	assert.Equal(t, "0000000354", doc.DocumentNumber)
	require.Len(t, doc.Entries, 4)
	assert.True(t, doc.IsBalanced)
	assert.True(t, doc.TotalDebit.Equal(decimal.NewFromInt(120)))
	assert.True(t, doc.TotalCredit.Equal(decimal.NewFromInt(120)))

	// legacy code 1 on a purchase maps to full credit
	assert.Equal(t, "пок10", doc.PurchaseOperation)
	assert.Equal(t, "03", doc.VatDocumentType)

	// purchases declare in the VAT month, not the document date
	require.NotNil(t, doc.VatDate)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), *doc.VatDate)
}

func TestParsePaymentDocument(t *testing.T) {
	result, err := Parse([]byte(purchaseXML), "pokupki_02_2026.xml")
	require.NoError(t, err)

	pay := result.Documents[1]
	// payments carry the document date as VAT date but no VAT data
	require.NotNil(t, pay.VatDate)
	assert.Equal(t, pay.DocumentDate, *pay.VatDate)
	assert.Empty(t, pay.PurchaseOperation)
	assert.Empty(t, pay.SalesOperation)
	assert.Empty(t, pay.VatDocumentType)
	assert.True(t, pay.VatAmount.IsZero())
	assert.True(t, pay.IsBalanced)
}

func TestParseSaleVatDateIsDocumentDate(t *testing.T) {
	saleXML := `<Export>
  <Contractors>
    <Contractor ca_contractorId="C9" contractorName="Клиент ЕООД" contractorEIK="201122334"/>
  </Contractors>
  <Documents>
    <Document accountingMonth="2026-03-01" vatMonth="2026-03-01" documentDate="2026-03-12"
              documentNumber="0000001001" reason="Продажба стоки"
              netAmountBGN="200.00" vatAmountBGN="40.00" totalAmountBGN="240.00"
              ca_vatOperationID="3" ca_contractorId="C9">
      <Accounting amountBGN="200.00" ca_vatOperationID="3">
        <AccountingDetail direction="Debit" accountNumber="411" accountName="Клиенти"/>
        <AccountingDetail direction="Credit" accountNumber="702" accountName="Приходи от продажби"/>
      </Accounting>
      <Accounting amountBGN="40.00" ca_vatOperationID="3">
        <AccountingDetail direction="Debit" accountNumber="411" accountName="Клиенти"/>
        <AccountingDetail direction="Credit" accountNumber="4532" accountName="ДДС продажби"/>
      </Accounting>
      <VATData vatRegister="2">
        <VAT taxBase="200.00" vatRate="20.00" vatAmountBGN="40.00" vatOperationIden="1"/>
      </VATData>
    </Document>
  </Documents>
</Export>`

	result, err := Parse([]byte(saleXML), "prodajbi_03_2026.xml")
	require.NoError(t, err)
	assert.Equal(t, string(vatclass.KindSale), result.DocumentKind)

	doc := result.Documents[0]
	assert.Equal(t, "про11", doc.SalesOperation)
	assert.Equal(t, "01", doc.VatDocumentType)
	require.NotNil(t, doc.VatDate)
	assert.Equal(t, doc.DocumentDate, *doc.VatDate)

	assert.True(t, doc.IsBalanced)
	assert.Empty(t, result.Warnings)
}

func TestParseUnbalancedDocumentWarning(t *testing.T) {
	xml := `<Export>
  <Documents>
    <Document documentDate="2026-01-10" documentNumber="77" reason="x" ca_vatOperationID="0">
      <Accounting amountBGN="50.00">
        <AccountingDetail direction="Debit" accountNumber="601"/>
      </Accounting>
    </Document>
  </Documents>
</Export>`

	result, err := Parse([]byte(xml), "pokupki.xml")
	require.NoError(t, err)
	assert.False(t, result.Documents[0].IsBalanced)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "77")
}

func TestParseContractorConflict(t *testing.T) {
	conflictXML := `<Export>
  <Contractors>
    <Contractor ca_contractorId="C2" contractorName="БИГ ЕООД" contractorEIK="111222333"/>
    <Contractor ca_contractorId="C2" contractorName="БИГ ООД" contractorEIK="111222333"/>
  </Contractors>
  <Documents>
    <Document documentDate="2026-01-10" documentNumber="1" reason="x" ca_vatOperationID="0" ca_contractorId="C2">
      <Accounting amountBGN="10.00">
        <AccountingDetail direction="Debit" accountNumber="501"/>
        <AccountingDetail direction="Credit" accountNumber="401"/>
      </Accounting>
    </Document>
  </Documents>
</Export>`

	result, err := Parse([]byte(conflictXML), "pokupki.xml")
	require.NoError(t, err)

	assert.Equal(t, []string{"C2"}, result.ContractorConflicts)
	// last occurrence wins
	assert.Equal(t, "БИГ ООД", result.Contractors[0].Name)
}

func TestParseRejectsForeignXML(t *testing.T) {
	_, err := Parse([]byte(`<Other><Thing/></Other>`), "other.xml")
	assert.Error(t, err)
}

func TestEscapeInnerQuotes(t *testing.T) {
	in := `<Contractor contractorName=""БИГ" ЕООД" contractorEIK="111"/>`
	out := escapeInnerQuotes(in)
	assert.Equal(t, `<Contractor contractorName="&quot;БИГ&quot; ЕООД" contractorEIK="111"/>`, out)
}

func TestEscapeInnerQuotesKeepsXMLDeclaration(t *testing.T) {
	in := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<Export><Contractor contractorName=""БИГ" ЕООД"/></Export>`
	out := escapeInnerQuotes(in)
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `contractorName="&quot;БИГ&quot; ЕООД"`)
}

func TestDecodeWindows1251(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().Bytes([]byte(`<Export><Contractors><Contractor ca_contractorId="C1" contractorName="МЕТРО АД"/></Contractors></Export>`))
	require.NoError(t, err)

	result, err := Parse(encoded, "pokupki.xml")
	require.NoError(t, err)
	require.Len(t, result.Contractors, 1)
	assert.Equal(t, "МЕТРО АД", result.Contractors[0].Name)
}

func TestDetectKindFromFileName(t *testing.T) {
	assert.Equal(t, vatclass.KindPurchase, DetectKindFromFileName("ctrl_pokupki_01.xml"))
	assert.Equal(t, vatclass.KindSale, DetectKindFromFileName("Продажби_март.xml"))
	assert.Equal(t, vatclass.DocumentKind(""), DetectKindFromFileName("export.xml"))
}

func TestMergeContractor(t *testing.T) {
	a := models.ImportContractor{SourceID: "C1", Name: "МЕТРО АД", EIK: "121644736"}
	b := models.ImportContractor{SourceID: "C1", Name: "МЕТРО АД", VatNumber: "BG121644736"}

	merged, conflict := MergeContractor(a, b)
	assert.False(t, conflict)
	assert.Equal(t, "BG121644736", merged.VatNumber)
	assert.Equal(t, "121644736", merged.EIK)

	c := models.ImportContractor{SourceID: "C1", Name: "ДРУГО ИМЕ"}
	merged, conflict = MergeContractor(merged, c)
	assert.True(t, conflict)
	assert.Equal(t, "ДРУГО ИМЕ", merged.Name)
}
