package dao

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type artifactJSON struct {
	ABI   json.RawMessage `json:"abi"`
	Roles []struct {
		ID     string   `json:"id"`
		Name   string   `json:"name"`
		Bytes  string   `json:"bytes"`
		Params []string `json:"params"`
	} `json:"roles"`
}

// ParseArtifact decodes an artifact.json document.
func ParseArtifact(data []byte) (*Artifact, error) {
	var raw artifactJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if len(raw.ABI) == 0 {
		return nil, fmt.Errorf("decode artifact: missing abi")
	}

	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("decode artifact abi: %w", err)
	}

	art := &Artifact{ABI: parsed}
	for _, r := range raw.Roles {
		hash := crypto.Keccak256Hash([]byte(r.ID))
		if r.Bytes != "" {
			hash = common.HexToHash(r.Bytes)
		}
		art.Roles = append(art.Roles, Role{ID: r.ID, Name: r.Name, Hash: hash, Params: r.Params})
	}
	return art, nil
}
