package main

import (
	"fmt"

	"github.com/joshuapare/earlyalloc/alloc"
	"github.com/joshuapare/earlyalloc/cmd/earlyctl/logger"
	"github.com/joshuapare/earlyalloc/config"
	"github.com/joshuapare/earlyalloc/region"
)

// session is an allocator initialised over a freshly mapped region.
type session struct {
	region *region.Region
	early  *alloc.EarlyAllocator

	// alloc is what commands drive: early, wrapped for logging.
	alloc alloc.Allocator
}

// openSession maps c.RegionSize bytes and initialises an early allocator
// over them, starting c.RegionOffset bytes past the mapping base.
func openSession(c *config.Config) (*session, error) {
	r, err := region.Map(uintptr(c.RegionSize))
	if err != nil {
		return nil, err
	}
	logger.Debug("region mapped", "base", fmt.Sprintf("%#x", r.Base()), "len", r.Len())

	ea := alloc.NewEarly(uintptr(c.PageSize))
	s := &session{
		region: r,
		early:  ea,
		alloc:  alloc.NewLogged(ea, logger.L),
	}

	offset := uintptr(c.RegionOffset)
	if err := s.alloc.Init(r.Base()+offset, r.Len()-offset); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("failed to initialise allocator: %w", err)
	}
	logger.Info("allocator ready",
		"start", fmt.Sprintf("%#x", ea.Stats().Start),
		"total_bytes", ea.TotalBytes(),
		"total_pages", ea.TotalPages(),
	)
	return s, nil
}

func (s *session) Close() error {
	return s.region.Close()
}
