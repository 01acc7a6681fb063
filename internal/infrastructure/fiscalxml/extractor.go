// Package fiscalxml extracts line items from NFe-style fiscal XML documents.
package fiscalxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// ErrNoItems is returned when a document yields zero recognizable line items
var ErrNoItems = errors.New("no items recognized in document")

// LineItem is one product line extracted from a trade document. Values are
// kept raw; numeric and identifier normalization happen downstream.
type LineItem struct {
	// Number is the 1-based item position within the document
	Number int
	// Code is the commercial barcode (cEAN), falling back to the supplier
	// product code (cProd) when the barcode field is absent or unfilled
	Code string
	// SupplierCode is the supplier's own product code (cProd)
	SupplierCode string
	Description  string
	// Quantity is the raw commercial quantity (qCom); may be fractional
	Quantity string
	// UnitCost is the raw commercial unit value (vUnCom)
	UnitCost string
}

// Document is the extracted content of one fiscal document
type Document struct {
	// Issuer is the emitter's registered name
	Issuer string
	// AccessKey is the document reference key (infNFe Id)
	AccessKey string
	Items     []LineItem
}

type nfeProc struct {
	XMLName xml.Name `xml:"nfeProc"`
	NFe     nfe      `xml:"NFe"`
}

type nfe struct {
	XMLName xml.Name `xml:"NFe"`
	InfNFe  infNFe   `xml:"infNFe"`
}

type infNFe struct {
	ID   string `xml:"Id,attr"`
	Emit struct {
		XNome string `xml:"xNome"`
	} `xml:"emit"`
	Det []det `xml:"det"`
}

type det struct {
	NItem string `xml:"nItem,attr"`
	Prod  struct {
		CProd  string `xml:"cProd"`
		CEAN   string `xml:"cEAN"`
		XProd  string `xml:"xProd"`
		QCom   string `xml:"qCom"`
		VUnCom string `xml:"vUnCom"`
	} `xml:"prod"`
}

// Extract parses a fiscal XML payload into its document metadata and line
// items. Both the processed wrapper (nfeProc) and the bare NFe element are
// accepted. A document with zero recognizable items is a fatal error.
func Extract(data []byte) (*Document, error) {
	info, err := unwrap(data)
	if err != nil {
		return nil, fmt.Errorf("unreadable document: %w", err)
	}

	doc := &Document{
		Issuer:    strings.TrimSpace(info.Emit.XNome),
		AccessKey: strings.TrimSpace(info.ID),
	}

	for i, d := range info.Det {
		code := cleanCode(d.Prod.CEAN)
		if code == "" {
			// Some suppliers ship "SEM GTIN" or leave cEAN empty; the
			// fiscal product code is the fallback identity.
			code = cleanCode(d.Prod.CProd)
		}
		if code == "" {
			continue
		}

		doc.Items = append(doc.Items, LineItem{
			Number:       i + 1,
			Code:         code,
			SupplierCode: strings.TrimSpace(d.Prod.CProd),
			Description:  strings.TrimSpace(d.Prod.XProd),
			Quantity:     strings.TrimSpace(d.Prod.QCom),
			UnitCost:     strings.TrimSpace(d.Prod.VUnCom),
		})
	}

	if len(doc.Items) == 0 {
		return nil, ErrNoItems
	}

	return doc, nil
}

func unwrap(data []byte) (*infNFe, error) {
	var proc nfeProc
	if err := xml.Unmarshal(data, &proc); err == nil {
		return &proc.NFe.InfNFe, nil
	}

	var bare nfe
	if err := xml.Unmarshal(data, &bare); err != nil {
		return nil, err
	}
	return &bare.InfNFe, nil
}

// cleanCode trims a code field and discards placeholder values
func cleanCode(code string) string {
	code = strings.TrimSpace(code)
	if strings.EqualFold(code, "SEM GTIN") {
		return ""
	}
	return code
}
