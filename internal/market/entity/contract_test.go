package entity

import "testing"

func strPtr(s string) *string { return &s }

func TestContractTransitionAllowed(t *testing.T) {
	cases := []struct {
		current string
		next    string
		want    bool
	}{
		{ContractStatusPendingCommission, ContractStatusCommissionPaid, true},
		{ContractStatusPendingCommission, ContractStatusAwaitingSellerSign, false},
		{ContractStatusCommissionPaid, ContractStatusAwaitingSellerSign, true},
		{ContractStatusAwaitingSellerSign, ContractStatusAwaitingBuyerSign, true},
		{ContractStatusAwaitingSellerSign, ContractStatusAwaitingPlatformSign, false},
		{ContractStatusAwaitingBuyerSign, ContractStatusAwaitingPlatformSign, true},
		{ContractStatusAwaitingPlatformSign, ContractStatusFullySigned, true},
		{ContractStatusFullySigned, ContractStatusAwaitingSellerPayment, true},
		{ContractStatusAwaitingSellerPayment, ContractStatusCompleted, true},
		{ContractStatusCompleted, ContractStatusDisputed, false},
		{ContractStatusCancelled, ContractStatusPendingCommission, false},
		{ContractStatusDisputed, ContractStatusCompleted, false},
	}

	for _, tc := range cases {
		if got := ContractTransitionAllowed(tc.current, tc.next); got != tc.want {
			t.Errorf("ContractTransitionAllowed(%q, %q) = %v, want %v", tc.current, tc.next, got, tc.want)
		}
	}
}

func TestAbsorbingStatesReachableFromEveryActiveContractStatus(t *testing.T) {
	active := []string{
		ContractStatusPendingCommission,
		ContractStatusCommissionPaid,
		ContractStatusAwaitingSellerSign,
		ContractStatusAwaitingBuyerSign,
		ContractStatusAwaitingPlatformSign,
		ContractStatusFullySigned,
		ContractStatusAwaitingSellerPayment,
	}
	for _, status := range active {
		if !ContractTransitionAllowed(status, ContractStatusCancelled) {
			t.Errorf("cancel not allowed from %q", status)
		}
		if !ContractTransitionAllowed(status, ContractStatusDisputed) {
			t.Errorf("dispute not allowed from %q", status)
		}
	}
}

func TestFullySignedDependsOnlyOnSignatureFields(t *testing.T) {
	c := &DirectSupplyContract{
		SellerSignature:   strPtr("Seller Co"),
		BuyerSignature:    strPtr("Buyer Co"),
		PlatformSignature: strPtr("Platform"),
	}

	// Status must not influence the predicate either way.
	for _, status := range []string{ContractStatusPendingCommission, ContractStatusDisputed, "garbage", ""} {
		c.Status = status
		if !c.FullySigned() {
			t.Errorf("FullySigned() = false with all signatures set and status %q", status)
		}
	}

	c.Status = ContractStatusFullySigned
	c.PlatformSignature = nil
	if c.FullySigned() {
		t.Error("FullySigned() = true with a missing platform signature")
	}

	c.PlatformSignature = strPtr("Platform")
	c.SellerSignature = nil
	if c.FullySigned() {
		t.Error("FullySigned() = true with a missing seller signature")
	}
}

func TestSigningDue(t *testing.T) {
	c := &DirectSupplyContract{Status: ContractStatusAwaitingSellerSign}
	if !c.SigningDue(SignPartySeller) {
		t.Error("seller signature should be due in awaiting_seller_sign")
	}
	if c.SigningDue(SignPartyBuyer) {
		t.Error("buyer signature should not be due in awaiting_seller_sign")
	}
	if c.SigningDue(SignPartyPlatform) {
		t.Error("platform signature should not be due in awaiting_seller_sign")
	}

	c.Status = ContractStatusPendingCommission
	if c.SigningDue(SignPartySeller) {
		t.Error("no signature should be due before the commission is paid")
	}
}
