package pricewatch

import "errors"

var ErrNoChanges = errors.New("no price changes")
