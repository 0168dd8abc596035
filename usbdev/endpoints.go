package usbdev

// ConfigureOutEndpoint applies the configuration of an OUT endpoint:
// whether it is enabled, whether it accepts SETUP transactions, and whether
// it is isochronous. Only endpoint ep's bit changes in each register; other
// endpoints are untouched. ep values of MaxEndpoints or higher fail with
// ErrBadEndpoint and modify nothing.
func (c *Controller) ConfigureOutEndpoint(ep uint8, enabled, setup, iso bool) error {
	if ep >= MaxEndpoints {
		return ErrBadEndpoint
	}
	epMask := uint32(1) << ep
	c.setEndpointBit(RegEndpointOutEnable, epMask, enabled)
	c.setEndpointBit(RegReceiveEnableSetup, epMask, setup)
	c.setEndpointBit(RegReceiveEnableOut, epMask, enabled)
	c.setEndpointBit(RegOutIsochronous, epMask, iso)
	return nil
}

// ConfigureInEndpoint applies the configuration of an IN endpoint. Only
// endpoint ep's bit changes in each register. ep values of MaxEndpoints or
// higher fail with ErrBadEndpoint and modify nothing.
func (c *Controller) ConfigureInEndpoint(ep uint8, enabled, iso bool) error {
	if ep >= MaxEndpoints {
		return ErrBadEndpoint
	}
	epMask := uint32(1) << ep
	c.setEndpointBit(RegEndpointInEnable, epMask, enabled)
	c.setEndpointBit(RegInIsochronous, epMask, iso)
	return nil
}

// SetEndpointStalling sets or clears the STALL state of the endpoint pair
// (both the IN and the OUT side of ep). Stalling provides back-pressure on
// an endpoint; it does not cancel a transfer already handed to the
// controller. ep values of MaxEndpoints or higher fail with ErrBadEndpoint
// and modify nothing.
func (c *Controller) SetEndpointStalling(ep uint8, stalling bool) error {
	if ep >= MaxEndpoints {
		return ErrBadEndpoint
	}
	epMask := uint32(1) << ep
	c.setEndpointBit(RegOutStall, epMask, stalling)
	c.setEndpointBit(RegInStall, epMask, stalling)
	return nil
}

// setEndpointBit sets or clears one endpoint's bit in a per-endpoint bitmap
// register, read-modify-write.
func (c *Controller) setEndpointBit(reg uint32, epMask uint32, on bool) {
	v := c.bus.Read32(reg) &^ epMask
	if on {
		v |= epMask
	}
	c.bus.Write32(reg, v)
}
