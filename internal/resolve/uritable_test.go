package resolve

import (
	"errors"
	"testing"
)

func TestExtractFirstURI(t *testing.T) {
	t.Parallel()

	const table = `<tran:URITable xmlns:tran="http://www.bea.com/wli/sb/transports">` +
		`<tran:tableElement>` +
		`<tran:URI>jms://wls01:7001/cf/jndi.ORDERS_IN</tran:URI>` +
		`<tran:weight>1</tran:weight>` +
		`</tran:tableElement>` +
		`<tran:tableElement>` +
		`<tran:URI>jms://wls02:7001/cf/jndi.ORDERS_IN</tran:URI>` +
		`</tran:tableElement>` +
		`</tran:URITable>`

	uri, err := ExtractFirstURI(table)
	if err != nil {
		t.Fatalf("ExtractFirstURI error: %v", err)
	}
	if uri != "jms://wls01:7001/cf/jndi.ORDERS_IN" {
		t.Fatalf("uri = %q", uri)
	}
}

func TestExtractFirstURIEmptyElement(t *testing.T) {
	t.Parallel()

	for _, table := range []string{
		`<tbl><URI></URI></tbl>`,
		`<tbl><URI/></tbl>`,
		`<tbl><URI>  </URI></tbl>`,
	} {
		uri, err := ExtractFirstURI(table)
		if err != nil {
			t.Fatalf("ExtractFirstURI(%q) error: %v", table, err)
		}
		if uri != "" {
			t.Fatalf("ExtractFirstURI(%q) = %q, want empty", table, uri)
		}
	}
}

func TestExtractFirstURIMalformed(t *testing.T) {
	t.Parallel()

	if _, err := ExtractFirstURI(`<tbl><URI>jms://x`); err == nil {
		t.Fatal("expected error for truncated markup")
	}
	if _, err := ExtractFirstURI(`<tbl><wrong></tbl>`); err == nil {
		t.Fatal("expected error for mismatched tags")
	}
}

func TestExtractFirstURINoElement(t *testing.T) {
	t.Parallel()

	_, err := ExtractFirstURI(`<tbl><other>v</other></tbl>`)
	if !errors.Is(err, ErrNoURIElement) {
		t.Fatalf("err = %v, want ErrNoURIElement", err)
	}
}
