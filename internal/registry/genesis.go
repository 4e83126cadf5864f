package registry

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sproutfund/protocol-core/internal/adapter"
)

// GenesisToken is one entry of the token-list file used to seed the
// registry at node boot.
type GenesisToken struct {
	Address            string `json:"address"`
	MinimumWholeTokens uint64 `json:"minimum_whole_tokens"`
	// Decimals is only consulted when the node runs against the in-process
	// settlement backend and has to create the token ledger itself.
	Decimals uint8 `json:"decimals,omitempty"`
}

// GenesisTokenList is the structure of the token-list JSON file.
type GenesisTokenList struct {
	Tokens []GenesisToken `json:"tokens"`
}

// GenesisLoader seeds a token registry from a JSON token list.
type GenesisLoader struct {
	fs   adapter.FileSystem
	json adapter.JSON
}

// NewGenesisLoader creates a loader backed by the given adapters.
func NewGenesisLoader(fs adapter.FileSystem, json adapter.JSON) *GenesisLoader {
	return &GenesisLoader{fs: fs, json: json}
}

// Parse reads and decodes the token list at filePath without touching the
// registry.
func (l *GenesisLoader) Parse(filePath string) (*GenesisTokenList, error) {
	data, err := l.fs.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read token list file: %w", err)
	}

	var list GenesisTokenList
	if err := l.json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse token list JSON: %w", err)
	}
	return &list, nil
}

// Load reads the token list at filePath and registers every entry with the
// registry on behalf of caller. The caller must be an admin; any entry
// failing registration aborts the load.
func (l *GenesisLoader) Load(ctx context.Context, filePath string, reg *TokenRegistry, caller common.Address) error {
	list, err := l.Parse(filePath)
	if err != nil {
		return err
	}

	for _, entry := range list.Tokens {
		if !common.IsHexAddress(entry.Address) {
			return fmt.Errorf("invalid token address in token list: %s", entry.Address)
		}
		token := common.HexToAddress(entry.Address)
		if err := reg.AddToken(ctx, caller, token, entry.MinimumWholeTokens); err != nil {
			return fmt.Errorf("failed to register token %s: %w", token.Hex(), err)
		}
	}

	return nil
}
