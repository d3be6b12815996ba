package jupiter

import "encoding/json"

// Token is one entry of the Jupiter token list. Older list versions key the
// mint as "mint", newer ones as "address".
type Token struct {
	Mint     string   `json:"mint"`
	Symbol   string   `json:"symbol"`
	Name     string   `json:"name"`
	Decimals uint8    `json:"decimals"`
	LogoURI  string   `json:"logoURI,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

func (t *Token) UnmarshalJSON(data []byte) error {
	var raw struct {
		Address  string   `json:"address"`
		Mint     string   `json:"mint"`
		Symbol   string   `json:"symbol"`
		Name     string   `json:"name"`
		Decimals uint8    `json:"decimals"`
		LogoURI  string   `json:"logoURI"`
		Tags     []string `json:"tags"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Mint = raw.Mint
	if t.Mint == "" {
		t.Mint = raw.Address
	}
	t.Symbol = raw.Symbol
	t.Name = raw.Name
	t.Decimals = raw.Decimals
	t.LogoURI = raw.LogoURI
	t.Tags = raw.Tags
	return nil
}
