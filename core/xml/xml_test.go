package xml

import (
	"testing"
)

const packageDoc = `<?xml version="1.0" encoding="utf-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="uuid_id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Bhagavad-gita As It Is</dc:title>
    <dc:creator>A. C. Bhaktivedanta Swami Prabhupada</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="part0004" href="text/part0004.html" media-type="application/xhtml+xml"/>
    <item id="part0005" href="text/part0005.html" media-type="application/xhtml+xml"/>
    <item id="css" href="styles/style.css" media-type="text/css"/>
  </manifest>
  <spine toc="ncx">
    <itemref idref="part0004"/>
    <itemref idref="part0005"/>
  </spine>
</package>`

// TestParseValidXML verifies parsing of well-formed XML.
func TestParseValidXML(t *testing.T) {
	doc, err := Parse([]byte(packageDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc == nil {
		t.Fatal("Parse returned nil document")
	}
}

// TestParseInvalidXML verifies error handling for malformed XML.
func TestParseInvalidXML(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"unclosed tag", "<package><spine></package>"},
		{"mismatched tags", "<package></manifest>"},
		{"invalid chars", "<package>\x00</package>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.xml))
			if err == nil {
				t.Error("Parse should fail for invalid XML")
			}
		})
	}
}

// TestRoot verifies root element access.
func TestRoot(t *testing.T) {
	doc, err := Parse([]byte(packageDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	root := doc.Root()
	if root == nil {
		t.Fatal("Root returned nil")
	}
	if root.Name() != "package" {
		t.Errorf("root name = %q, want %q", root.Name(), "package")
	}
	if root.Attr("version") != "2.0" {
		t.Errorf("version = %q, want %q", root.Attr("version"), "2.0")
	}
}

// TestXPathLocalName verifies queries over namespaced documents.
func TestXPathLocalName(t *testing.T) {
	doc, err := Parse([]byte(packageDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	items, err := doc.XPath("//*[local-name()='itemref']")
	if err != nil {
		t.Fatalf("XPath failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d itemrefs, want 2", len(items))
	}
	if items[0].Attr("idref") != "part0004" || items[1].Attr("idref") != "part0005" {
		t.Errorf("idrefs = [%s, %s]", items[0].Attr("idref"), items[1].Attr("idref"))
	}
}

// TestXPathFirst verifies single-node queries.
func TestXPathFirst(t *testing.T) {
	doc, err := Parse([]byte(packageDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	title, err := doc.XPathFirst("//*[local-name()='title']")
	if err != nil {
		t.Fatalf("XPathFirst failed: %v", err)
	}
	if title == nil {
		t.Fatal("XPathFirst returned nil for an existing node")
	}
	if title.Text() != "Bhagavad-gita As It Is" {
		t.Errorf("title = %q", title.Text())
	}

	missing, err := doc.XPathFirst("//*[local-name()='absent']")
	if err != nil {
		t.Fatalf("XPathFirst failed: %v", err)
	}
	if missing != nil {
		t.Error("XPathFirst should return nil for an absent node")
	}
}

// TestXPathWithPredicate verifies attribute predicates.
func TestXPathWithPredicate(t *testing.T) {
	doc, err := Parse([]byte(packageDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	item, err := doc.XPathFirst("//*[local-name()='item' and @id='part0005']")
	if err != nil {
		t.Fatalf("XPathFirst failed: %v", err)
	}
	if item == nil {
		t.Fatal("XPathFirst returned nil")
	}
	if item.Attr("href") != "text/part0005.html" {
		t.Errorf("href = %q", item.Attr("href"))
	}
}

// TestXPathInvalidExpression verifies compile errors surface.
func TestXPathInvalidExpression(t *testing.T) {
	doc, err := Parse([]byte(packageDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if _, err := doc.XPath("//[invalid"); err == nil {
		t.Error("XPath should reject an invalid expression")
	}
	if _, err := doc.XPathFirst("//[invalid"); err == nil {
		t.Error("XPathFirst should reject an invalid expression")
	}
}

// TestAttributes verifies the attribute map.
func TestAttributes(t *testing.T) {
	doc, err := Parse([]byte(packageDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	item, err := doc.XPathFirst("//*[local-name()='item']")
	if err != nil {
		t.Fatalf("XPathFirst failed: %v", err)
	}
	attrs := item.Attributes()
	if attrs["id"] != "part0004" || attrs["media-type"] != "application/xhtml+xml" {
		t.Errorf("attrs = %v", attrs)
	}
}

// TestChildren verifies child element traversal.
func TestChildren(t *testing.T) {
	doc, err := Parse([]byte(packageDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	spine, err := doc.XPathFirst("//*[local-name()='spine']")
	if err != nil {
		t.Fatalf("XPathFirst failed: %v", err)
	}
	children := spine.Children()
	if len(children) != 2 {
		t.Fatalf("spine has %d children, want 2", len(children))
	}
	for _, c := range children {
		if c.Name() != "itemref" {
			t.Errorf("child name = %q, want itemref", c.Name())
		}
	}
}

// TestNilNodeAccessors verifies nil receivers are safe.
func TestNilNodeAccessors(t *testing.T) {
	var n Node
	if n.Name() != "" || n.Text() != "" || n.Attr("x") != "" {
		t.Error("zero Node accessors should return empty values")
	}
	if n.Attributes() != nil || n.Children() != nil {
		t.Error("zero Node collections should be nil")
	}
}
