// Package seed imports YAML fixtures of buyers, accounts, sellers and items
// into a marketplace State.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/shunichi-ikebuchi/marketplace/pkg/market"
)

// Fixture is the root of a seed file.
type Fixture struct {
	Buyers []BuyerFixture `yaml:"buyers"`
}

// BuyerFixture describes one buyer. Account holds the opening balance as a
// decimal string; nil means the buyer has no bank account.
type BuyerFixture struct {
	Name    string        `yaml:"name"`
	Email   string        `yaml:"email"`
	Phone   string        `yaml:"phone"`
	Address string        `yaml:"address"`
	Account *string       `yaml:"account"`
	Store   *StoreFixture `yaml:"store"`
}

// StoreFixture upgrades the buyer to a seller with the given inventory.
type StoreFixture struct {
	Name  string        `yaml:"name"`
	Items []ItemFixture `yaml:"items"`
}

// ItemFixture is one inventory line. Price is a decimal string.
type ItemFixture struct {
	ID       int    `yaml:"id"`
	Name     string `yaml:"name"`
	Quantity int    `yaml:"quantity"`
	Price    string `yaml:"price"`
}

// Result summarizes what Apply created.
type Result struct {
	Buyers   []*market.Buyer
	Accounts int
	Sellers  int
	Items    int
}

// Load reads and parses a seed file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	return Parse(data)
}

// Parse parses seed YAML. Unknown keys are rejected so typos do not pass
// silently.
func Parse(data []byte) (*Fixture, error) {
	var fixture Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fixture); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &fixture, nil
}

// Apply registers every buyer of the fixture in state through the regular
// ledger operations, so ids come from the state's counters and the usual
// validation applies. It stops at the first failure; buyers created before
// it stay in state.
func (f *Fixture) Apply(state *market.State) (*Result, error) {
	result := &Result{}

	for i, bf := range f.Buyers {
		b, err := state.RegisterBuyer(bf.Name, bf.Email, bf.Phone, bf.Address)
		if err != nil {
			return result, fmt.Errorf("buyer #%d (%s): %w", i+1, bf.Name, err)
		}
		result.Buyers = append(result.Buyers, b)

		if bf.Account != nil {
			balance, err := decimal.NewFromString(*bf.Account)
			if err != nil {
				return result, fmt.Errorf("buyer #%d (%s): invalid account balance %q: %w", i+1, bf.Name, *bf.Account, err)
			}
			if _, err := state.OpenAccount(b.ID, balance); err != nil {
				return result, fmt.Errorf("buyer #%d (%s): %w", i+1, bf.Name, err)
			}
			result.Accounts++
		}

		if bf.Store == nil {
			continue
		}
		sel, err := state.UpgradeToSeller(b.ID, bf.Store.Name)
		if err != nil {
			return result, fmt.Errorf("buyer #%d (%s): %w", i+1, bf.Name, err)
		}
		result.Sellers++

		for _, it := range bf.Store.Items {
			price, err := decimal.NewFromString(it.Price)
			if err != nil {
				return result, fmt.Errorf("store %s item %d: invalid price %q: %w", sel.StoreName, it.ID, it.Price, err)
			}
			item := market.Item{ID: it.ID, Name: it.Name, Quantity: it.Quantity, Price: price}
			if err := sel.AddItem(item); err != nil {
				return result, fmt.Errorf("store %s item %d: %w", sel.StoreName, it.ID, err)
			}
			result.Items++
		}
	}

	return result, nil
}
