package domain_test

import (
	"testing"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
)

func TestNextID(t *testing.T) {
	cases := []struct {
		prefix string
		count  int
		want   string
	}{
		{domain.ProductIDPrefix, 0, "P001"},
		{domain.SupplierIDPrefix, 41, "S042"},
		{domain.OrderIDPrefix, 998, "OR999"},
		{domain.OrderIDPrefix, 999, "OR1000"},
	}
	for _, tc := range cases {
		if got := domain.NextID(tc.prefix, tc.count); got != tc.want {
			t.Fatalf("NextID(%q, %d) = %q, want %q", tc.prefix, tc.count, got, tc.want)
		}
	}
}

func TestProductValidateInvariants(t *testing.T) {
	valid := domain.Product{ID: "P001", Name: "Bolt", Description: "steel bolt", Price: domain.MoneyFromFloat(1.5), Stock: 100}
	if errs := valid.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}

	cases := map[string]func(p *domain.Product){
		"no id":          func(p *domain.Product) { p.ID = "" },
		"blank name":     func(p *domain.Product) { p.Name = "  " },
		"no description": func(p *domain.Product) { p.Description = "" },
		"negative price": func(p *domain.Product) { p.Price = domain.MoneyFromFloat(-0.01) },
		"negative stock": func(p *domain.Product) { p.Stock = -1 },
	}
	for name, mut := range cases {
		t.Run(name, func(t *testing.T) {
			p := valid
			mut(&p)
			if len(p.ValidateInvariants()) == 0 {
				t.Fatalf("expected validation errors for %s", name)
			}
		})
	}
}

func TestFindProduct(t *testing.T) {
	products := []domain.Product{{ID: "P001"}, {ID: "P002"}}
	if idx, ok := domain.FindProduct(products, "P002"); !ok || idx != 1 {
		t.Fatalf("expected P002 at 1, got %d %v", idx, ok)
	}
	if _, ok := domain.FindProduct(products, "P003"); ok {
		t.Fatal("expected P003 to be missing")
	}
}
