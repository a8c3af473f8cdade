// internal/identity/visibility.go
// Pure visibility and ownership predicates. No state, no side effects.

package identity

// CanView reports whether the actor may read a post: public posts are open
// to everyone, private posts only to their owner.
func CanView(actor Identity, ownerID int64, isPublic bool) bool {
	if isPublic {
		return true
	}
	return actor.Authenticated && actor.ID == ownerID
}

// CanMutate reports whether the actor may edit or delete an entity.
// Only the owner ever can.
func CanMutate(actor Identity, ownerID int64) bool {
	return actor.Authenticated && actor.ID == ownerID
}
