//go:build spdictdebug

package dict

const debugAssertions = true
