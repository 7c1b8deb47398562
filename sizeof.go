package kafka

func sizeofString(s string) int32 {
	return 2 + int32(len(s))
}

func sizeofBytes(b []byte) int32 {
	return 4 + int32(len(b))
}

func sizeofStringArray(a []string) int32 {
	n := int32(4)
	for _, s := range a {
		n += sizeofString(s)
	}
	return n
}

func sizeofInt32Array(a []int32) int32 {
	return 4 + 4*int32(len(a))
}

func sizeofArray(n int, f func(int) int32) int32 {
	s := int32(4)
	for i := 0; i < n; i++ {
		s += f(i)
	}
	return s
}
