// Package gdocs implements the document-authoring collaborator: one formatted
// Google Doc per successfully extracted equipment label, filed into the
// group's Drive folder.
package gdocs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/el7oseni/dme-equipment-docs/internal/pipeline"
)

const documentMimeType = "application/vnd.google-apps.document"

// Builder implements pipeline.ArtifactBuilder on the Docs and Drive APIs.
type Builder struct {
	docs  *docs.Service
	drive *drive.Service
}

// NewBuilder builds Docs and Drive clients from the OAuth token source.
// Drive is needed because documents are created through the Drive API so they
// can be placed directly into the target folder.
func NewBuilder(ctx context.Context, ts oauth2.TokenSource) (*Builder, error) {
	docsSrv, err := docs.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create Docs service: %w", err)
	}
	driveSrv, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create Drive service: %w", err)
	}
	return &Builder{docs: docsSrv, drive: driveSrv}, nil
}

// Build creates the equipment history record document inside folderID and
// returns its edit URL. Content insertion failures are errors; styling and
// column-width adjustments are best-effort and only logged.
func (b *Builder) Build(ctx context.Context, fields pipeline.ExtractedFields, folderID string) (string, error) {
	title := DocTitle(fields)

	file, err := b.drive.Files.Create(&drive.File{
		Name:     title,
		MimeType: documentMimeType,
		Parents:  []string{folderID},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create document %s: %w", title, err)
	}
	docID := file.Id

	body, spans := ComposeBody(fields)

	// Body text first: it lands at index 1, which pins every computed span
	// at a known document offset.
	if err := b.batchUpdate(ctx, docID, []*docs.Request{{
		InsertText: &docs.InsertTextRequest{
			Location: &docs.Location{Index: 1},
			Text:     body,
		},
	}}); err != nil {
		return "", fmt.Errorf("insert body into %s: %w", title, err)
	}

	if err := b.insertMaintenanceTable(ctx, docID); err != nil {
		return "", fmt.Errorf("insert table into %s: %w", title, err)
	}

	if err := b.appendFooter(ctx, docID); err != nil {
		return "", fmt.Errorf("append footer to %s: %w", title, err)
	}

	// Best-effort formatting: a style that fails to apply leaves a readable
	// document behind, so it never fails the item.
	if err := b.applySpans(ctx, docID, spans); err != nil {
		log.Warn().Err(err).Str("doc", title).Msg("Text styling failed, leaving document unstyled")
	}

	url := DocURL(docID)
	log.Debug().
		Str("doc", title).
		Str("url", url).
		Msg("Equipment record document created")

	return url, nil
}

func (b *Builder) batchUpdate(ctx context.Context, docID string, reqs []*docs.Request) error {
	_, err := b.docs.Documents.BatchUpdate(docID, &docs.BatchUpdateDocumentRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	return err
}

// endIndex returns the index just before the document's final newline, the
// insertion point for appending content.
func endIndex(doc *docs.Document) int64 {
	content := doc.Body.Content
	if len(content) == 0 {
		return 1
	}
	return content[len(content)-1].EndIndex - 1
}

// insertMaintenanceTable appends the 9x8 table, fills its header row, and
// applies the fixed column widths (widths best-effort).
func (b *Builder) insertMaintenanceTable(ctx context.Context, docID string) error {
	doc, err := b.docs.Documents.Get(docID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	if err := b.batchUpdate(ctx, docID, []*docs.Request{{
		InsertTable: &docs.InsertTableRequest{
			Location: &docs.Location{Index: endIndex(doc)},
			Rows:     tableRows,
			Columns:  tableColumns,
		},
	}}); err != nil {
		return fmt.Errorf("insert table: %w", err)
	}

	// Re-fetch to learn the table's cell positions.
	doc, err = b.docs.Documents.Get(docID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get document after table insert: %w", err)
	}

	var tableStart int64 = -1
	for _, el := range doc.Body.Content {
		if el.Table == nil {
			continue
		}
		tableStart = el.StartIndex

		firstRow := el.Table.TableRows[0]

		// Insert header text back to front so earlier cell indices stay valid.
		var reqs []*docs.Request
		for i := len(firstRow.TableCells) - 1; i >= 0; i-- {
			if i >= len(tableHeaders) {
				continue
			}
			cell := firstRow.TableCells[i]
			reqs = append(reqs, &docs.Request{
				InsertText: &docs.InsertTextRequest{
					Location: &docs.Location{Index: cell.Content[0].StartIndex},
					Text:     tableHeaders[i],
				},
			})
		}
		if err := b.batchUpdate(ctx, docID, reqs); err != nil {
			return fmt.Errorf("insert table headers: %w", err)
		}
		break
	}
	if tableStart < 0 {
		return fmt.Errorf("table not found after insert")
	}

	var widthReqs []*docs.Request
	for col, width := range columnWidths {
		widthReqs = append(widthReqs, &docs.Request{
			UpdateTableColumnProperties: &docs.UpdateTableColumnPropertiesRequest{
				TableStartLocation: &docs.Location{Index: tableStart},
				ColumnIndices:      []int64{int64(col)},
				TableColumnProperties: &docs.TableColumnProperties{
					WidthType: "FIXED_WIDTH",
					Width:     &docs.Dimension{Magnitude: width, Unit: "PT"},
				},
				Fields: "width,widthType",
			},
		})
	}
	if err := b.batchUpdate(ctx, docID, widthReqs); err != nil {
		log.Warn().Err(err).Str("doc", docID).Msg("Column width update failed, keeping default widths")
	}

	return nil
}

func (b *Builder) appendFooter(ctx context.Context, docID string) error {
	doc, err := b.docs.Documents.Get(docID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	return b.batchUpdate(ctx, docID, []*docs.Request{{
		InsertText: &docs.InsertTextRequest{
			Location: &docs.Location{Index: endIndex(doc)},
			Text:     footerText,
		},
	}})
}

// applySpans translates the composed spans into text/paragraph style updates.
// Span offsets are already UTF-16 code units, the Docs API index space; body
// text sits at document offset 1, hence the +1 shift.
func (b *Builder) applySpans(ctx context.Context, docID string, spans []styledSpan) error {
	var reqs []*docs.Request
	for _, span := range spans {
		start := int64(span.Start + 1)
		end := int64(span.End + 1)

		style := &docs.TextStyle{
			Bold:      span.Bold,
			Underline: span.Underline,
		}
		fieldsMask := "bold,underline"
		if span.FontSize > 0 {
			style.FontSize = &docs.Dimension{Magnitude: span.FontSize, Unit: "PT"}
			fieldsMask += ",fontSize"
		}

		reqs = append(reqs, &docs.Request{
			UpdateTextStyle: &docs.UpdateTextStyleRequest{
				Range:     &docs.Range{StartIndex: start, EndIndex: end},
				TextStyle: style,
				Fields:    fieldsMask,
			},
		})

		if span.Center {
			reqs = append(reqs, &docs.Request{
				UpdateParagraphStyle: &docs.UpdateParagraphStyleRequest{
					Range:          &docs.Range{StartIndex: start, EndIndex: end + 1},
					ParagraphStyle: &docs.ParagraphStyle{Alignment: "CENTER"},
					Fields:         "alignment",
				},
			})
		}
	}

	return b.batchUpdate(ctx, docID, reqs)
}
