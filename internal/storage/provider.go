package storage

import "slidedeck/internal/ports"

// Provider is the artifact store shared by the generator and the API.
// It is an alias to ports.StorageProvider to keep call-sites simple.
type Provider = ports.StorageProvider
