// internal/membership/domain.go
package membership

import "biblioteka/internal/storage"

// Member is a registered reader. Members are referenced by the lending
// engine but never mutated by it.
type Member = storage.Member
