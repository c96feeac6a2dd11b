package client

import (
	"context"
	"net/url"
)

// Vocabulary lists the categories a medium accepts.  The first entry of
// Species and Tissues is the empty "no selection" choice.
type Vocabulary struct {
	Medium    string   `json:"medium"`
	Compounds []string `json:"compounds"`
	Species   []string `json:"species"`
	Tissues   []string `json:"tissues"`
}

// VocabulariesClient reads per-medium vocabularies.
type VocabulariesClient struct {
	client *Client
}

// Get returns the vocabulary of medium.
func (vc *VocabulariesClient) Get(ctx context.Context, medium string) (*Vocabulary, error) {
	if err := validateMedium(medium); err != nil {
		return nil, err
	}
	var out Vocabulary
	if err := vc.client.get(ctx, "/vocabularies/"+url.PathEscape(medium), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
