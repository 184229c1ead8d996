package render

import "strings"

// PlainText renders a formatted document as plain text, one section per block.
func PlainText(fd FormattedDocument) string {
	var b strings.Builder
	if !fd.Header.Name.Empty() {
		b.WriteString(fd.Header.Name.Value)
		b.WriteString("\n")
	}
	if len(fd.Header.Contacts) > 0 {
		b.WriteString(strings.Join(fd.Header.Contacts, fd.Layout.ContactSeparator))
		b.WriteString("\n")
	}
	for _, s := range fd.Sections {
		b.WriteString("\n")
		b.WriteString(s.Heading)
		b.WriteString("\n")
		if s.Body != "" {
			b.WriteString(s.Body)
			b.WriteString("\n")
		}
		for _, item := range s.Items {
			b.WriteString(itemLine(item, fd.Layout.Arrangement))
			b.WriteString("\n")
			if item.Body != "" {
				b.WriteString(item.Body)
				b.WriteString("\n")
			}
			if item.Link != "" {
				b.WriteString(item.Link)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func itemLine(item Item, arrangement Arrangement) string {
	parts := make([]string, 0, 3)
	if arrangement == ArrangeLabelGrid || arrangement == ArrangeTimeline {
		if item.Dates != "" {
			parts = append(parts, item.Dates)
		}
	}
	if !item.Title.Empty() {
		parts = append(parts, item.Title.Value)
	}
	if !item.Subtitle.Empty() {
		parts = append(parts, item.Subtitle.Value)
	}
	if arrangement != ArrangeLabelGrid && arrangement != ArrangeTimeline && item.Dates != "" {
		parts = append(parts, item.Dates)
	}
	return strings.Join(parts, " | ")
}
