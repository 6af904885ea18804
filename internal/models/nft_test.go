package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributesValue(t *testing.T) {
	var empty Attributes
	v, err := empty.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	v, err = Attributes{{TraitType: "Element", Value: "Fire", Rarity: "Rare"}}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"trait_type":"Element","value":"Fire","rarity":"Rare"}]`, string(v.([]byte)))
}

func TestAttributesScan(t *testing.T) {
	var a Attributes
	require.NoError(t, a.Scan([]byte(`[{"trait_type":"Aura","value":"Soft"}]`)))
	require.Len(t, a, 1)
	assert.Equal(t, "Aura", a[0].TraitType)
	assert.Empty(t, a[0].Rarity)

	require.NoError(t, a.Scan(`[]`))
	assert.Empty(t, a)

	require.NoError(t, a.Scan(nil))
	assert.NotNil(t, a)

	assert.Error(t, a.Scan(42))
}

func TestPublicHidesCredentials(t *testing.T) {
	u := &User{ID: "u1", Email: "a@example.com", Username: "alice", PasswordHash: "x"}
	p := u.Public()
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, "alice", p.Username)

	var nilUser *User
	assert.Nil(t, nilUser.Public())
}

func TestPurchasable(t *testing.T) {
	assert.True(t, (&NFT{OnSale: true, Price: dec("0.01")}).Purchasable())
	assert.False(t, (&NFT{OnSale: true, Price: dec("0")}).Purchasable())
	assert.False(t, (&NFT{OnSale: false, Price: dec("1")}).Purchasable())
}
