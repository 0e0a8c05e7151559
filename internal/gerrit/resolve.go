package gerrit

// resolveThreads computes the unresolved state for every raw comment.
// Comments are threaded through inReplyTo back-references; all members of a
// thread share one state. The fold is over thread members in input order:
// the last comment carrying an explicit unresolved marker decides, and a
// thread with no marker at all counts as unresolved (it has never been
// acted on). Returns a slice parallel to comments.
func resolveThreads(comments []rawComment) []bool {
	byID := make(map[string]int, len(comments))
	for i, c := range comments {
		if c.ID != "" {
			byID[c.ID] = i
		}
	}

	// Thread key is the index of the root comment; comments replying to an
	// unknown id start their own thread.
	rootOf := func(i int) int {
		seen := map[int]bool{}
		for {
			c := comments[i]
			if c.InReplyTo == "" || seen[i] {
				return i
			}
			seen[i] = true
			parent, ok := byID[c.InReplyTo]
			if !ok {
				return i
			}
			i = parent
		}
	}

	type threadState struct {
		mark    *bool
		members []int
	}
	threads := map[int]*threadState{}
	var roots []int
	for i := range comments {
		root := rootOf(i)
		st, ok := threads[root]
		if !ok {
			st = &threadState{}
			threads[root] = st
			roots = append(roots, root)
		}
		st.members = append(st.members, i)
		if comments[i].Unresolved != nil {
			st.mark = comments[i].Unresolved
		}
	}

	unresolved := make([]bool, len(comments))
	for _, root := range roots {
		st := threads[root]
		state := true
		if st.mark != nil {
			state = *st.mark
		}
		for _, i := range st.members {
			unresolved[i] = state
		}
	}
	return unresolved
}
