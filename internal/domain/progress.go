package domain

// ProgressFunc reports batch progress: (1, 10), (2, 10), ...
type ProgressFunc func(done, total int)
