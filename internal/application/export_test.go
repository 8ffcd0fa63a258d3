package application

// SetWorkers sizes the pool both passes run on.
func (s *MigrateService) SetWorkers(n int) { s.workers = n }
