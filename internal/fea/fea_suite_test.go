package fea_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestFEA(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "FEA Suite")
}
