// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"os"
)

// HandleCacheFlushSignal empties the result cache whenever a signal is received
func (s *Service) HandleCacheFlushSignal(ctx context.Context, sigChan <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sigChan:
			s.searcher.Flush()
			s.logger.Info("search result cache flushed")
		}
	}
}
