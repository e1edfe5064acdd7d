package pcapfile

import (
	"fmt"
	"strconv"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/roman-kulish/wifi-density/internal/capture"
)

// PHY codes, matching the values wireshark reports in wlan_radio.phy for the
// amendments the analyzer distinguishes.
const (
	phy80211a  = "1"
	phy80211b  = "2"
	phy80211g  = "3"
	phy80211n  = "4"
	phy80211ac = "5"
)

// beaconFrame converts a decoded packet into a frame record. Packets that are
// not 802.11 beacons are rejected.
func beaconFrame(packet gopacket.Packet) (capture.Record, bool) {
	dot11, ok := packet.Layer(layers.LayerTypeDot11).(*layers.Dot11)
	if !ok || dot11.Type != layers.Dot11TypeMgmtBeacon {
		return nil, false
	}

	frame := capture.Record{}
	if len(dot11.Address2) > 0 {
		frame.Set(capture.FieldTransmitter, dot11.Address2.String())
	}
	if len(dot11.Address3) > 0 {
		frame.Set(capture.FieldBSSID, dot11.Address3.String())
	}

	if radio, ok := packet.Layer(layers.LayerTypeRadioTap).(*layers.RadioTap); ok {
		addRadioFields(frame, radio)
	}

	// The tag list is present even when empty so the SSID lookup sees a beacon
	// that advertised nothing rather than a frame without a body.
	frame.Set(capture.FieldTags)
	for _, l := range packet.Layers() {
		ie, ok := l.(*layers.Dot11InformationElement)
		if !ok {
			continue
		}
		frame.Add(capture.FieldTags, informationElementTag(ie))
	}

	return frame, true
}

func addRadioFields(frame capture.Record, radio *layers.RadioTap) {
	if radio.Present.DBMAntennaSignal() {
		frame.Set(capture.FieldSignal, strconv.Itoa(int(radio.DBMAntennaSignal)))
	}
	if radio.Present.DBMAntennaNoise() {
		frame.Set(capture.FieldNoise, strconv.Itoa(int(radio.DBMAntennaNoise)))
	}

	if radio.Present.Channel() && radio.ChannelFrequency != 0 {
		freq := int(radio.ChannelFrequency)
		frame.Set(capture.FieldFrequency, strconv.Itoa(freq))
		if ch, ok := channelNumber(freq); ok {
			frame.Set(capture.FieldChannel, strconv.Itoa(ch))
		}
	}

	if code, ok := phyCode(radio); ok {
		frame.Set(capture.FieldPHY, code)
	}
}

// phyCode derives the PHY type from the radiotap header. HT and VHT
// information take precedence over the channel flags.
func phyCode(radio *layers.RadioTap) (string, bool) {
	switch {
	case radio.Present.VHT():
		return phy80211ac, true
	case radio.Present.MCS():
		return phy80211n, true
	case !radio.Present.Channel():
		return "", false
	}

	flags := radio.ChannelFlags
	switch {
	case flags.Ghz5() && flags.OFDM():
		return phy80211a, true
	case flags.Ghz2() && flags.CCK():
		return phy80211b, true
	case flags.Ghz2() && flags.OFDM():
		return phy80211g, true
	}
	return "", false
}

// channelNumber maps a center frequency in MHz to its channel number.
func channelNumber(freq int) (int, bool) {
	switch {
	case freq == 2484:
		return 14, true
	case freq >= 2412 && freq < 2484:
		return (freq - 2407) / 5, true
	case freq >= 5955 && freq <= 7115:
		return (freq - 5950) / 5, true
	case freq >= 5000 && freq < 5955:
		return (freq - 5000) / 5, true
	case freq >= 4910 && freq <= 4980:
		return (freq - 4000) / 5, true
	}
	return 0, false
}

// informationElementTag renders an element in the tag list display form.
func informationElementTag(ie *layers.Dot11InformationElement) string {
	if ie.ID == layers.Dot11InformationElementIDSSID {
		return capture.SSIDTag(string(ie.Info))
	}
	return capture.Tag(ie.ID.String(), fmt.Sprintf("%d bytes", ie.Length))
}
