package legacy

// KeyMetadataHDVersion is the first key metadata version recording the HD
// key path and the seed fingerprint.
const KeyMetadataHDVersion = 10

// KeyMetadata is the keymeta record of a transparent key.
type KeyMetadata struct {
	Version    int32
	CreateTime int64
	// HDKeyPath and SeedFingerprint are only set from KeyMetadataHDVersion
	// on.
	HDKeyPath       string
	SeedFingerprint []byte
}

// HasHDInfo ...
func (m *KeyMetadata) HasHDInfo() bool {
	return m != nil && m.Version >= KeyMetadataHDVersion
}

// Key is a transparent key pair record with its metadata.
type Key struct {
	PubKey   []byte
	Metadata *KeyMetadata
}

// HDKeyPath returns the derivation path, if the metadata records one.
func (k *Key) HDKeyPath() (string, bool) {
	if !k.Metadata.HasHDInfo() || k.Metadata.HDKeyPath == "" {
		return "", false
	}
	return k.Metadata.HDKeyPath, true
}

// SeedFingerprint returns the seed fingerprint, if the metadata records
// one.
func (k *Key) SeedFingerprint() ([]byte, bool) {
	if !k.Metadata.HasHDInfo() || len(k.Metadata.SeedFingerprint) == 0 {
		return nil, false
	}
	return k.Metadata.SeedFingerprint, true
}
