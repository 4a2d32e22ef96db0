//go:build !unix

package ledger

// lock is a no-op on platforms without advisory file locking. The
// in-process mutex still serializes concurrent use within one program.
func (l *Ledger) lock() (func(), error) {
	return func() {}, nil
}
