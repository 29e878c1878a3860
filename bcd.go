package main

import "fmt"

// decode packed BCD, least significant digit in the low nibble. Nibbles
// above 9 are not masked, they accumulate at face value.
func bcdToDec(v uint) (dec uint) {
	place := uint(1)
	for v > 0 {
		dec += (v & 0x0f) * place
		place *= 10
		v >>= 4
	}
	return
}

// encode to packed BCD, least significant digit first
func decToBCD(v uint) (bcd uint) {
	var shift uint
	for v > 0 {
		bcd |= (v % 10) << shift
		shift += 4
		v /= 10
	}
	return
}

func bcdDigit(v uint, decade int) byte {
	for decade > 0 {
		v /= 10
		decade--
	}
	return byte(v % 10)
}

// Frequencies travel as five BCD bytes holding the value in 10 Hz units
// (eight digits, hundredths of a kHz). The byte order is not monotonic:
//
//	b[0] single 10 Hz digit       b[3] 10 MHz | 1 MHz
//	b[1] 1 kHz | 100 Hz           b[4] single 100 MHz digit
//	b[2] 100 kHz | 10 kHz
//
// encodeFreqData takes hertz and truncates to the 10 Hz resolution.
func encodeFreqData(hz uint) (b [5]byte, err error) {
	u := hz / 10
	if u > 99999999 {
		return b, fmt.Errorf("%w: frequency %d Hz out of range", errUnsupportedValue, hz)
	}
	b[0] = bcdDigit(u, 0)
	b[1] = bcdDigit(u, 2)<<4 | bcdDigit(u, 1)
	b[2] = bcdDigit(u, 4)<<4 | bcdDigit(u, 3)
	b[3] = bcdDigit(u, 6)<<4 | bcdDigit(u, 5)
	b[4] = bcdDigit(u, 7)
	return b, nil
}

// decodeFreqData reverses encodeFreqData: bytes taken high to low with the
// place value each group carries, summed, scaled back to hertz.
func decodeFreqData(payload []byte) (uint, error) {
	if len(payload) < 5 {
		return 0, fmt.Errorf("%w: frequency payload [% x]", errMalformedResponse, payload)
	}
	multipliers := [5]uint{1e7, 1e5, 1e3, 10, 1}
	var u uint
	for i, m := range multipliers {
		u += bcdToDec(uint(payload[4-i])) * m
	}
	return u * 10, nil
}
