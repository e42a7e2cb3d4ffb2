package options

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	text := `
topology subnet
ifconfig 10.8.0.5 255.255.255.0
# a comment
; another comment
route 10.0.0.0 255.0.0.0
route 192.168.0.0 255.255.0.0
dhcp-option DNS 8.8.8.8
dhcp-option DOMAIN "corp example.com"
`
	list, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}

	if len(list) != 6 {
		t.Fatalf("Expected 6 directives, got %d", len(list))
	}

	if o, ok := list.Get("topology"); !ok || o.GetOptional(1) != "subnet" {
		t.Errorf("Expected first topology directive with arg 'subnet', got %v", o)
	}

	routes := list.GetAll("route")
	if len(routes) != 2 {
		t.Fatalf("Expected 2 route directives, got %d", len(routes))
	}
	if routes[0].GetOptional(1) != "10.0.0.0" || routes[1].GetOptional(1) != "192.168.0.0" {
		t.Errorf("Route directives out of push order: %v", routes)
	}

	domain, _ := list.Get("dhcp-option")
	if domain.Name() != "dhcp-option" {
		t.Errorf("Get should return the first dhcp-option directive")
	}

	quoted := list[5]
	want := Option{"dhcp-option", "DOMAIN", "corp example.com"}
	if !reflect.DeepEqual(quoted, want) {
		t.Errorf("Quoted argument parsed as %v, want %v", quoted, want)
	}
}

func TestParse_UnterminatedQuote(t *testing.T) {
	if _, err := Parse(`dhcp-option DOMAIN "broken`); err == nil {
		t.Errorf("Expected error for unterminated quote")
	}
}

func TestOptionArity(t *testing.T) {
	o := Option{"dhcp-option", "DNS", "8.8.8.8"}

	if err := o.ExactArgs(3); err != nil {
		t.Errorf("ExactArgs(3): unexpected error: %v", err)
	}
	if err := o.ExactArgs(4); err == nil {
		t.Errorf("ExactArgs(4): expected arity error")
	}
	if err := o.MinArgs(3); err != nil {
		t.Errorf("MinArgs(3): unexpected error: %v", err)
	}
	if err := o.MinArgs(4); err == nil {
		t.Errorf("MinArgs(4): expected arity error")
	}

	if _, err := o.Get(2); err != nil {
		t.Errorf("Get(2): unexpected error: %v", err)
	}
	if _, err := o.Get(3); err == nil {
		t.Errorf("Get(3): expected arity error, not silent truncation")
	}
	if got := o.GetOptional(3); got != "" {
		t.Errorf("GetOptional(3) = %q, want empty", got)
	}
}

func TestOptionRender(t *testing.T) {
	o := Option{"route", "10.0.0.0", "255.0.0.0"}
	if got := o.Render(); got != "[route] [10.0.0.0] [255.0.0.0]" {
		t.Errorf("Render() = %q", got)
	}

	long := Option{"dhcp-option", string(make([]byte, 200))}
	rendered := long.Render()
	if len(rendered) > 100 {
		t.Errorf("Render() should truncate long arguments, got %d chars", len(rendered))
	}
}

func TestGet_Missing(t *testing.T) {
	list := OptionList{{"ifconfig", "10.0.0.1", "10.0.0.2"}}

	if _, ok := list.Get("route"); ok {
		t.Errorf("Get should report missing directive")
	}
	if list.Exists("route") {
		t.Errorf("Exists should report missing directive")
	}
	if got := list.GetAll("route"); len(got) != 0 {
		t.Errorf("GetAll should be empty for missing directive, got %v", got)
	}
}
