package compose

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	appErrors "github.com/amptron-th/testdoc-api/pkg/errors"
)

// extractDocText pulls the raw text out of a .docx archive
// (word/document.xml). Legacy binary .doc payloads fail the zip parse and are
// reported as malformed.
func extractDocText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrMalformedDocument.Code, appErrors.ErrMalformedDocument.Status, "document is not a readable Word archive")
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", appErrors.Clone(appErrors.ErrMalformedDocument, "document archive has no body")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrMalformedDocument.Code, appErrors.ErrMalformedDocument.Status, "open document body")
	}
	defer rc.Close() //nolint:errcheck

	return decodeDocumentXML(rc)
}

func decodeDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	var inText bool
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrMalformedDocument.Code, appErrors.ErrMalformedDocument.Status, "decode document body")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
