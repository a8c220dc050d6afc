// Package xmlpo extracts translatable messages from XML documents into
// gettext catalogs and merges translated catalogs back into documents.
//
// A mode policy decides which elements are atomic translation units. Nested
// units are replaced in their parent's message by numbered placeholders
// such as <placeholder-1/>, so translators can move inline markup without
// editing it.
//
// Basic usage:
//
//	import (
//	    "github.com/ZaguanLabs/xmlpo"
//	    "github.com/ZaguanLabs/xmlpo/catalog"
//	    "github.com/ZaguanLabs/xmlpo/mode"
//	)
//
//	func main() {
//	    engine := xmlpo.NewEngine(mode.NewDocBook())
//
//	    // Build a template from the sources
//	    pot, err := engine.Extract([]string{"guide.xml"})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    pot.Write(os.Stdout, catalog.Header{})
//
//	    // Later, merge a translated catalog
//	    f, _ := os.Open("de.po")
//	    po, _ := catalog.Parse(f)
//	    out, err := xmlpo.NewEngine(mode.NewDocBook(), xmlpo.WithLanguage("de")).Merge(po, "guide.xml")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    os.Stdout.Write(out)
//	}
package xmlpo
