package mode

import (
	"regexp"
	"strings"

	"github.com/ZaguanLabs/xmlpo/document"
)

// Credit is one translator line of the credits message.
type Credit struct {
	Name  string
	Email string
	Years string
}

// Holder renders the credit as "Name (email)".
func (c Credit) Holder() string {
	switch {
	case c.Name != "" && c.Email != "":
		return c.Name + " (" + c.Email + ")"
	case c.Name != "":
		return c.Name
	case c.Email != "":
		return c.Email
	}
	return "???"
}

var creditLine = regexp.MustCompile(`^([^<,]+?)\s*(?:<([^>,]+)>)?,\s*(.*)$`)

// ParseCredits splits a translated credits message into entries. Lines
// not in the "NAME <EMAIL>, YEARS" form are skipped, as is the untranslated
// message itself.
func ParseCredits(text string) []Credit {
	if text == "" || text == CreditsMessage {
		return nil
	}
	var credits []Credit
	for _, line := range strings.Split(text, "\n") {
		m := creditLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		credits = append(credits, Credit{
			Name:  strings.TrimSpace(m[1]),
			Email: strings.TrimSpace(m[2]),
			Years: strings.TrimSpace(m[3]),
		})
	}
	return credits
}

// textElement creates <name>text</name>.
func textElement(doc *document.Document, name, text string) document.NodeID {
	el := doc.NewElement(name)
	doc.AppendChild(el, doc.NewText(text))
	return el
}

// insertAfter places child right after the last child of parent named
// after, or at the end when there is none.
func insertAfter(doc *document.Document, parent document.NodeID, after string, child document.NodeID) {
	kids := doc.Children(parent)
	at := -1
	for i, c := range kids {
		if doc.Kind(c) == document.KindElement && document.LocalName(doc.Name(c)) == after {
			at = i
		}
	}
	if at < 0 {
		doc.AppendChild(parent, child)
		return
	}
	next := make([]document.NodeID, 0, len(kids)+1)
	next = append(next, kids[:at+1]...)
	next = append(next, child)
	next = append(next, kids[at+1:]...)
	doc.SetChildren(parent, next)
}
