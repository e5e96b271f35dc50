package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCan(t *testing.T) {
	admin := User{Role: RoleAdmin}
	vendor := User{Role: RoleVendor}
	customer := User{Role: RoleCustomer}

	assert.True(t, admin.Can(CapManageStore))
	assert.True(t, admin.Can(CapSellGoods))

	assert.False(t, vendor.Can(CapManageStore))
	assert.True(t, vendor.Can(CapSellGoods))

	assert.False(t, customer.Can(CapManageStore))
	assert.False(t, customer.Can(CapSellGoods))

	unknown := User{Role: "superhero"}
	assert.False(t, unknown.Can(CapManageStore))
}
