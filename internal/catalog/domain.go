// internal/catalog/domain.go
package catalog

import "biblioteka/internal/storage"

// Book is a catalog record with a total copy count and a derived available
// count. Availability is recomputed from the loan ledger on every read,
// never cached, so it cannot drift above the true value.
type Book = storage.Book
