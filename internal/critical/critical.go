package critical

// Do runs fn inside a critical section.
func Do(fn func()) {
	s := Enter()
	fn()
	Exit(s)
}
