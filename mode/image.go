package mode

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZaguanLabs/xmlpo/catalog"
	"github.com/ZaguanLabs/xmlpo/document"
)

// MissingImageHash is used in image messages when the file cannot be read.
const MissingImageHash = "THIS FILE DOESN'T EXIST"

const imageComment = "When image changes, this message will be marked fuzzy or untranslated for you.\n" +
	"It doesn't matter what you translate it to: it's not used at all."

// ImageMessage returns the msgid recorded for an image reference.
func ImageMessage(ref, hash string) string {
	return fmt.Sprintf("@@image: '%s'; md5=%s", ref, hash)
}

// hashFile returns the hex md5 of the file at ref, resolved against the
// directory of the referencing document.
func hashFile(docPath, ref string) string {
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(docPath), ref)
	}
	f, err := os.Open(path) // #nosec G304 - references come from the document being translated
	if err != nil {
		return MissingImageHash
	}
	defer f.Close()

	h := md5.New() // #nosec G401 - content fingerprint, not a security boundary
	if _, err := io.Copy(h, f); err != nil {
		return MissingImageHash
	}
	return hex.EncodeToString(h.Sum(nil))
}

// emitImages adds one image message for every element named tag carrying
// attr, optionally filtered by match.
func emitImages(doc *document.Document, path string, sink Sink, tag, attr string, match func(document.NodeID) bool) {
	doc.Walk(doc.Root(), func(id document.NodeID) bool {
		if doc.Kind(id) != document.KindElement || document.LocalName(doc.Name(id)) != tag {
			return true
		}
		if match != nil && !match(id) {
			return true
		}
		ref, ok := doc.Attr(id, attr)
		if !ok || ref == "" {
			return true
		}
		sink.Add(catalog.Message{
			ID:        ImageMessage(ref, hashFile(path, ref)),
			Locations: []catalog.Location{{File: path, Tag: tag, Line: doc.Line(id)}},
			Comment:   imageComment,
		})
		return true
	})
}
