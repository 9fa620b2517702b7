package item

import "github.com/BhanuRekulampati/item-tracker/internal/model"

// CanMutate reports whether the given user may modify or delete the item.
// Only the registering owner may; there are no admin overrides.
func CanMutate(it *model.Item, userID int64) bool {
	return it != nil && it.UserID == userID
}
