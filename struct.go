package atom

// CanHash is implemented by keys and servers that supply their own hash code.
type CanHash interface {
	HashCode() (hashValue uint32)
}
