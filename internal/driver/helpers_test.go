package driver

import "keystone/internal/source"

var zeroRef source.Ref

func sourceLoc(p string) source.Location { return source.NewLocation(p) }
