package utils

import (
	"testing"
)

func TestRemoveAccents(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"hello", "hello"},
		{"cobrança", "cobranca"},
		{"café", "cafe"},
		{"São Paulo", "Sao Paulo"},
		{"naïve", "naive"},
	}

	for _, test := range tests {
		result := RemoveAccents(test.input)
		if result != test.expected {
			t.Errorf("RemoveAccents(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestToPascalCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"widgets", "Widgets"},
		{"book-shelves", "BookShelves"},
		{"order_items", "OrderItems"},
		{"getUserById", "GetUserById"},
		{"XMLHttpRequest", "XmlhttpRequest"},
		{"HELLO_WORLD", "HelloWorld"},
		{"négociação", "Negociacao"},
	}

	for _, test := range tests {
		result := ToPascalCase(test.input)
		if result != test.expected {
			t.Errorf("ToPascalCase(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestToCamelCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"Hello", "hello"},
		{"hello-world", "helloWorld"},
		{"HELLO_WORLD", "helloWorld"},
		{"Negociação", "negociacao"},
	}

	for _, test := range tests {
		result := ToCamelCase(test.input)
		if result != test.expected {
			t.Errorf("ToCamelCase(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"helloWorld", []string{"hello", "World"}},
		{"XMLHttpRequest", []string{"XMLHttp", "Request"}},
		{"hello-world", []string{"hello", "world"}},
		{"negociação", []string{"negociacao"}},
	}

	for _, test := range tests {
		result := SplitWords(test.input)
		if len(result) != len(test.expected) {
			t.Errorf("SplitWords(%q) = %v, expected %v", test.input, result, test.expected)
			continue
		}
		for i, part := range result {
			if part != test.expected[i] {
				t.Errorf("SplitWords(%q) = %v, expected %v", test.input, result, test.expected)
				break
			}
		}
	}
}

func TestUpperLowerFirst(t *testing.T) {
	tests := []struct {
		input string
		upper string
		lower string
	}{
		{"", "", ""},
		{"id", "Id", "id"},
		{"createBook", "CreateBook", "createBook"},
		{"URL", "URL", "uRL"},
	}

	for _, test := range tests {
		if got := UpperFirst(test.input); got != test.upper {
			t.Errorf("UpperFirst(%q) = %q, expected %q", test.input, got, test.upper)
		}
		if got := LowerFirst(test.input); got != test.lower {
			t.Errorf("LowerFirst(%q) = %q, expected %q", test.input, got, test.lower)
		}
	}
}

func TestNamespaces(t *testing.T) {
	pkg, name := SplitNamespace("com.example.Book")
	if pkg != "com.example" || name != "Book" {
		t.Errorf("SplitNamespace = (%q, %q)", pkg, name)
	}
	pkg, name = SplitNamespace("Book")
	if pkg != "" || name != "Book" {
		t.Errorf("SplitNamespace without package = (%q, %q)", pkg, name)
	}
	if got := JoinNamespace("com.example", "", "billing.Invoice"); got != "com.example.billing.Invoice" {
		t.Errorf("JoinNamespace = %q", got)
	}
	if !IsJavaKeyword("record") || IsJavaKeyword("title") {
		t.Error("IsJavaKeyword mismatch")
	}
}
