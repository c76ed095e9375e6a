package model

// UniquenessFactors carries the personal entropy that makes every mint
// unique. The whole struct is sealed before it is written to storage.
type UniquenessFactors struct {
	LocationHash    string `json:"location_hash"`
	TimestampSeed   string `json:"timestamp_seed"`
	WalletEntropy   string `json:"wallet_entropy"`
	WalletPrincipal string `json:"wallet_principal,omitempty"`
	WalletAccountId string `json:"wallet_account_id,omitempty"`
	BiometricOptIn  bool   `json:"biometric_opt_in"`
	BiometricHash   string `json:"biometric_hash,omitempty"`
}

// CombinedSeed concatenates the entropy sources in the order the image
// seed and initial traits are derived from.
func (u *UniquenessFactors) CombinedSeed() string {
	return u.LocationHash + u.TimestampSeed + u.WalletEntropy + u.BiometricHash
}
