package ast

// Destroy walks n post-order, invoking each Func node's Cleanup hook (if
// any) exactly once and releasing its context buffer, per spec §4.7. The
// tree's children are owned exclusively by their parent, so a single
// post-order pass visits every node exactly once; there is no separate
// "free" step beyond running Cleanup, since Go's allocator reclaims memory
// the garbage collector can prove unreachable once destroy returns.
func Destroy(n Node) {
	if n == nil {
		return
	}
	switch v := n.(type) {
	case *Const, *VarRef:
		// leaves own nothing
	case *Unary:
		Destroy(v.Child)
	case *Binary:
		Destroy(v.Left)
		Destroy(v.Right)
	case *Func:
		for _, a := range v.Args {
			Destroy(a)
		}
		if v.Descriptor.Cleanup != nil {
			v.Descriptor.Cleanup(v.Ctx)
		}
		v.Ctx = nil
	default:
		panic("ast: Destroy: unhandled node kind")
	}
}
