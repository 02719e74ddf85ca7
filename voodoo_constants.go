// voodoo_constants.go - 3DFX Voodoo SST-1/SST-2 Register Definitions

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

/*
voodoo_constants.go - 3DFX Voodoo Graphics Register Definitions

Register offsets, bitfields and capacities for the Voodoo Graphics (SST-1),
Voodoo Rush/SB50 and Voodoo2 (SST-2) accelerator cores. Offsets are relative
to the start of a card's 16MB memory window; bits 22-23 of the bus address
select register space, linear framebuffer or texture memory.

Reference: 3Dfx SST-1 and SST-2 programming guides
*/

package main

// Card generations
const (
	VOODOO_1    = 0
	VOODOO_SB50 = 1
	VOODOO_2    = 2
)

// Card memory window decode (address bits 22-23)
const (
	VOODOO_SPACE_MASK = 0xC00000
	VOODOO_SPACE_REG  = 0x000000 // Register space
	VOODOO_SPACE_LFB  = 0x400000 // Linear framebuffer
	VOODOO_SPACE_TEX  = 0x800000 // Texture memory (0x800000-0xFFFFFF)
	VOODOO_REG_MASK   = 0x3FC    // Register offset within register space
)

// Chip select field in register addresses ((addr >> 10) & 0xF)
const (
	VOODOO_CHIP_FBI   = 1 << 0
	VOODOO_CHIP_TREX0 = 1 << 1
	VOODOO_CHIP_TREX1 = 1 << 2
	VOODOO_CHIP_TREX2 = 1 << 3
	VOODOO_CHIP_ALL   = 0xF
)

// Command FIFO entry tags. The tag occupies the high byte, the low 24 bits
// carry the masked card address.
const (
	FIFO_INVALID    = 0x00 << 24
	FIFO_WRITEL_REG = 0x01 << 24
	FIFO_WRITEW_FB  = 0x02 << 24
	FIFO_WRITEL_FB  = 0x03 << 24
	FIFO_WRITEL_TEX = 0x04 << 24

	FIFO_TYPE = 0xFF000000
	FIFO_ADDR = 0x00FFFFFF
)

// Queue and cache capacities
const (
	VOODOO_FIFO_SIZE  = 65536
	VOODOO_FIFO_MASK  = VOODOO_FIFO_SIZE - 1
	VOODOO_FIFO_SLACK = 4 // Producer blocks at FIFO_SIZE - FIFO_SLACK

	VOODOO_PARAM_SIZE = 1024
	VOODOO_PARAM_MASK = VOODOO_PARAM_SIZE - 1

	VOODOO_MAX_RENDER_THREADS = 2
	VOODOO_MAX_TMUS           = 2

	VOODOO_TEX_CACHE_MAX   = 64
	VOODOO_LOD_MAX         = 8
	VOODOO_TEX_DIRTY_SHIFT = 10

	VOODOO_DIRTY_LINES = 1024
)

// Display defaults
const (
	VOODOO_DEFAULT_WIDTH  = 640
	VOODOO_DEFAULT_HEIGHT = 480
	VOODOO_MAX_WIDTH      = 1024
	VOODOO_MAX_HEIGHT     = 1024
)

// Reference crystal for the DAC PLL (Hz)
const VOODOO_PLL_REF_HZ = 14318184.0

// Status register
const (
	VOODOO_STATUS   = 0x000 // Status register (read-only)
	VOODOO_INTRCTRL = 0x004 // Interrupt control (SST-2)
)

// Status register bits
const (
	VOODOO_STATUS_PCIFIFO_MASK = 0x3F         // PCI FIFO free entries (6 bits)
	VOODOO_STATUS_VRETRACE     = 1 << 6       // Vertical retrace active
	VOODOO_STATUS_FBI_BUSY     = 1 << 7       // FBI (framebuffer interface) busy
	VOODOO_STATUS_TMU_BUSY     = 1 << 8       // TMU (texture mapping unit) busy
	VOODOO_STATUS_SST_BUSY     = 1 << 9       // Overall chip busy
	VOODOO_STATUS_DISP_SHIFT   = 10           // Displayed buffer (2 bits)
	VOODOO_STATUS_MEMFIFO      = 0xFFFF << 12 // Memory FIFO free entries
	VOODOO_STATUS_SWAP_SHIFT   = 28           // Pending swap count (3 bits)
)

// Vertex coordinate registers (12.4 fixed-point)
const (
	VOODOO_VERTEX_AX = 0x008
	VOODOO_VERTEX_AY = 0x00C
	VOODOO_VERTEX_BX = 0x010
	VOODOO_VERTEX_BY = 0x014
	VOODOO_VERTEX_CX = 0x018
	VOODOO_VERTEX_CY = 0x01C
)

// Parameter start values
const (
	VOODOO_START_R = 0x020 // 12.12
	VOODOO_START_G = 0x024 // 12.12
	VOODOO_START_B = 0x028 // 12.12
	VOODOO_START_Z = 0x02C // 20.12
	VOODOO_START_A = 0x030 // 12.12
	VOODOO_START_S = 0x034 // 14.18
	VOODOO_START_T = 0x038 // 14.18
	VOODOO_START_W = 0x03C // 2.30
)

// Parameter gradients
const (
	VOODOO_DRDX = 0x040
	VOODOO_DGDX = 0x044
	VOODOO_DBDX = 0x048
	VOODOO_DZDX = 0x04C
	VOODOO_DADX = 0x050
	VOODOO_DSDX = 0x054
	VOODOO_DTDX = 0x058
	VOODOO_DWDX = 0x05C
	VOODOO_DRDY = 0x060
	VOODOO_DGDY = 0x064
	VOODOO_DBDY = 0x068
	VOODOO_DZDY = 0x06C
	VOODOO_DADY = 0x070
	VOODOO_DSDY = 0x074
	VOODOO_DTDY = 0x078
	VOODOO_DWDY = 0x07C
)

// Command registers
const (
	VOODOO_TRIANGLE_CMD  = 0x080
	VOODOO_FTRIANGLE_CMD = 0x100
	VOODOO_NOP_CMD       = 0x120
	VOODOO_FASTFILL_CMD  = 0x124
	VOODOO_SWAPBUF_CMD   = 0x128
	VOODOO_USERINTR_CMD  = 0x13C
)

// Floating point mirror of the vertex and parameter block
const (
	VOODOO_FVERTEX_AX = 0x088
	VOODOO_FVERTEX_AY = 0x08C
	VOODOO_FVERTEX_BX = 0x090
	VOODOO_FVERTEX_BY = 0x094
	VOODOO_FVERTEX_CX = 0x098
	VOODOO_FVERTEX_CY = 0x09C

	VOODOO_FSTART_R = 0x0A0
	VOODOO_FSTART_G = 0x0A4
	VOODOO_FSTART_B = 0x0A8
	VOODOO_FSTART_Z = 0x0AC
	VOODOO_FSTART_A = 0x0B0
	VOODOO_FSTART_S = 0x0B4
	VOODOO_FSTART_T = 0x0B8
	VOODOO_FSTART_W = 0x0BC

	VOODOO_FDRDX = 0x0C0
	VOODOO_FDGDX = 0x0C4
	VOODOO_FDBDX = 0x0C8
	VOODOO_FDZDX = 0x0CC
	VOODOO_FDADX = 0x0D0
	VOODOO_FDSDX = 0x0D4
	VOODOO_FDTDX = 0x0D8
	VOODOO_FDWDX = 0x0DC

	VOODOO_FDRDY = 0x0E0
	VOODOO_FDGDY = 0x0E4
	VOODOO_FDBDY = 0x0E8
	VOODOO_FDZDY = 0x0EC
	VOODOO_FDADY = 0x0F0
	VOODOO_FDSDY = 0x0F4
	VOODOO_FDTDY = 0x0F8
	VOODOO_FDWDY = 0x0FC
)

// Rendering mode registers
const (
	VOODOO_FBZ_COLOR_PATH  = 0x104
	VOODOO_FOG_MODE        = 0x108
	VOODOO_ALPHA_MODE      = 0x10C
	VOODOO_FBZ_MODE        = 0x110
	VOODOO_LFB_MODE        = 0x114
	VOODOO_CLIP_LEFT_RIGHT = 0x118
	VOODOO_CLIP_LOW_Y_HIGH = 0x11C
	VOODOO_FOG_COLOR       = 0x12C
	VOODOO_ZA_COLOR        = 0x130
	VOODOO_CHROMA_KEY      = 0x134
	VOODOO_STIPPLE         = 0x140
	VOODOO_COLOR0          = 0x144
	VOODOO_COLOR1          = 0x148
)

// Statistics registers (read-only)
const (
	VOODOO_FBI_PIXELS_IN   = 0x14C
	VOODOO_FBI_CHROMA_FAIL = 0x150
	VOODOO_FBI_ZFUNC_FAIL  = 0x154
	VOODOO_FBI_AFUNC_FAIL  = 0x158
	VOODOO_FBI_PIXELS_OUT  = 0x15C
)

// Fog table: 32 registers, two 8-bit fog/delta pairs each
const (
	VOODOO_FOG_TABLE_BASE = 0x160
	VOODOO_FOG_TABLE_END  = 0x1DC
	VOODOO_FOG_TABLE_SIZE = 64
)

// Initialisation and video registers. These bypass the command FIFO.
const (
	VOODOO_FBI_INIT4        = 0x200
	VOODOO_V_RETRACE        = 0x204
	VOODOO_BACK_PORCH       = 0x208
	VOODOO_VIDEO_DIMENSIONS = 0x20C
	VOODOO_FBI_INIT0        = 0x210
	VOODOO_FBI_INIT1        = 0x214
	VOODOO_FBI_INIT2        = 0x218
	VOODOO_FBI_INIT3        = 0x21C
	VOODOO_H_SYNC           = 0x220
	VOODOO_V_SYNC           = 0x224
	VOODOO_CLUT_DATA        = 0x228
	VOODOO_DAC_DATA         = 0x22C
	VOODOO_MAX_RGB_DELTA    = 0x230
	VOODOO_HV_RETRACE       = 0x240
	VOODOO_FBI_INIT5        = 0x244
	VOODOO_FBI_INIT6        = 0x248
	VOODOO_FBI_INIT7        = 0x24C

	VOODOO_INIT_SPACE_START = 0x200
	VOODOO_INIT_SPACE_END   = 0x2FC
)

// Texture unit registers
const (
	VOODOO_TEXTURE_MODE = 0x300
	VOODOO_TLOD         = 0x304
	VOODOO_TDETAIL      = 0x308
	VOODOO_TEX_BASE0    = 0x30C
	VOODOO_TEX_BASE1    = 0x310
	VOODOO_TEX_BASE2    = 0x314
	VOODOO_TEX_BASE38   = 0x318
	VOODOO_TREX_INIT0   = 0x31C
	VOODOO_TREX_INIT1   = 0x320

	VOODOO_NCC0_Y0 = 0x324
	VOODOO_NCC0_Y1 = 0x328
	VOODOO_NCC0_Y2 = 0x32C
	VOODOO_NCC0_Y3 = 0x330
	VOODOO_NCC0_I0 = 0x334
	VOODOO_NCC0_I1 = 0x338
	VOODOO_NCC0_I2 = 0x33C
	VOODOO_NCC0_I3 = 0x340
	VOODOO_NCC0_Q0 = 0x344
	VOODOO_NCC0_Q1 = 0x348
	VOODOO_NCC0_Q2 = 0x34C
	VOODOO_NCC0_Q3 = 0x350

	VOODOO_NCC1_Y0 = 0x354
	VOODOO_NCC1_Y3 = 0x360
	VOODOO_NCC1_I0 = 0x364
	VOODOO_NCC1_I3 = 0x370
	VOODOO_NCC1_Q0 = 0x374
	VOODOO_NCC1_Q3 = 0x380
)

// fbzMode bits
const (
	VOODOO_FBZ_CLIPPING     = 1 << 0  // Enable clip rectangle
	VOODOO_FBZ_CHROMAKEY    = 1 << 1  // Enable chroma keying
	VOODOO_FBZ_STIPPLE      = 1 << 2  // Enable stipple pattern
	VOODOO_FBZ_WBUFFER      = 1 << 3  // Use W buffer instead of Z
	VOODOO_FBZ_DEPTH_ENABLE = 1 << 4  // Enable depth buffer
	VOODOO_FBZ_DEPTH_SHIFT  = 5       // Depth compare function (3 bits)
	VOODOO_FBZ_DITHER       = 1 << 8  // Enable dithering
	VOODOO_FBZ_RGB_WRITE    = 1 << 9  // Enable RGB buffer write
	VOODOO_FBZ_DEPTH_WRITE  = 1 << 10 // Enable depth buffer write
	VOODOO_FBZ_DITHER_2X2   = 1 << 11 // Use 2x2 dither (vs 4x4)
	VOODOO_FBZ_ALPHA_WRITE  = 1 << 12 // Enable alpha buffer write
	VOODOO_FBZ_DRAW_SHIFT   = 14      // Draw buffer select (2 bits)
	VOODOO_FBZ_DEPTH_BIAS   = 1 << 16 // Add zaColor to depth
	VOODOO_FBZ_Y_ORIGIN     = 1 << 17 // Y origin at bottom
	VOODOO_FBZ_DEPTH_SOURCE = 1 << 20 // Depth from zaColor
)

// Depth test functions
const (
	VOODOO_DEPTH_NEVER        = 0
	VOODOO_DEPTH_LESS         = 1
	VOODOO_DEPTH_EQUAL        = 2
	VOODOO_DEPTH_LESSEQUAL    = 3
	VOODOO_DEPTH_GREATER      = 4
	VOODOO_DEPTH_NOTEQUAL     = 5
	VOODOO_DEPTH_GREATEREQUAL = 6
	VOODOO_DEPTH_ALWAYS       = 7
)

// alphaMode bits
const (
	VOODOO_ALPHA_TEST_EN    = 1 << 0 // Enable alpha test
	VOODOO_ALPHA_FUNC_SHIFT = 1      // Alpha test function (3 bits)
	VOODOO_ALPHA_BLEND_EN   = 1 << 4 // Enable alpha blending
	VOODOO_ALPHA_SRC_SHIFT  = 8      // Source RGB blend factor (4 bits)
	VOODOO_ALPHA_DST_SHIFT  = 12     // Dest RGB blend factor (4 bits)
	VOODOO_ALPHA_REF_SHIFT  = 24     // Alpha reference value (8 bits)
)

// Alpha test functions (same encoding as depth)
const (
	VOODOO_ALPHA_NEVER        = 0
	VOODOO_ALPHA_LESS         = 1
	VOODOO_ALPHA_EQUAL        = 2
	VOODOO_ALPHA_LESSEQUAL    = 3
	VOODOO_ALPHA_GREATER      = 4
	VOODOO_ALPHA_NOTEQUAL     = 5
	VOODOO_ALPHA_GREATEREQUAL = 6
	VOODOO_ALPHA_ALWAYS       = 7
)

// Blend factors
const (
	VOODOO_BLEND_ZERO      = 0  // 0
	VOODOO_BLEND_SRC_ALPHA = 1  // src.A
	VOODOO_BLEND_COLOR     = 2  // src color (dst factor) / dst color (src factor)
	VOODOO_BLEND_DST_ALPHA = 3  // dst.A
	VOODOO_BLEND_ONE       = 4  // 1
	VOODOO_BLEND_INV_SRC_A = 5  // 1 - src.A
	VOODOO_BLEND_INV_COLOR = 6  // 1 - color
	VOODOO_BLEND_INV_DST_A = 7  // 1 - dst.A
	VOODOO_BLEND_SATURATE  = 15 // min(src.A, 1-dst.A)
)

// fbzColorPath fields
const (
	VOODOO_FCP_RGB_SELECT_MASK    = 0x3    // Bits 0-1: other RGB source
	VOODOO_FCP_A_SELECT_SHIFT     = 2      // Bits 2-3: other alpha source
	VOODOO_FCP_CC_LOCALSELECT     = 1 << 4 // Local color: 0 iterated, 1 color0
	VOODOO_FCP_CCA_LOCALSEL_SHIFT = 5      // Bits 5-6: local alpha source
	VOODOO_FCP_CC_ZERO_OTHER      = 1 << 8
	VOODOO_FCP_CC_SUB_CLOCAL      = 1 << 9
	VOODOO_FCP_CC_MSELECT_SHIFT   = 10 // Bits 10-12
	VOODOO_FCP_CC_REVERSE_BLEND   = 1 << 13
	VOODOO_FCP_CC_ADD_SHIFT       = 14 // Bits 14-15
	VOODOO_FCP_CC_INVERT_OUTPUT   = 1 << 16
	VOODOO_FCP_CCA_ZERO_OTHER     = 1 << 17
	VOODOO_FCP_CCA_SUB_CLOCAL     = 1 << 18
	VOODOO_FCP_CCA_MSELECT_SHIFT  = 19 // Bits 19-21
	VOODOO_FCP_CCA_REVERSE_BLEND  = 1 << 22
	VOODOO_FCP_CCA_ADD_SHIFT      = 23 // Bits 23-24
	VOODOO_FCP_CCA_INVERT_OUTPUT  = 1 << 25
	VOODOO_FCP_TEXTURE_ENABLE     = 1 << 27
)

// Color source select values
const (
	VOODOO_CC_ITERATED = 0
	VOODOO_CC_TEXTURE  = 1
	VOODOO_CC_COLOR1   = 2
	VOODOO_CC_LFB      = 3
)

// Combine multiply select values
const (
	VOODOO_CC_MSEL_ZERO    = 0
	VOODOO_CC_MSEL_CLOCAL  = 1
	VOODOO_CC_MSEL_AOTHER  = 2
	VOODOO_CC_MSEL_ALOCAL  = 3
	VOODOO_CC_MSEL_TEXTURE = 4
)

// fogMode bits
const (
	VOODOO_FOG_ENABLE   = 1 << 0
	VOODOO_FOG_ADD      = 1 << 1
	VOODOO_FOG_MULT     = 1 << 2
	VOODOO_FOG_ALPHA    = 1 << 3 // Fog factor from iterated alpha
	VOODOO_FOG_Z        = 1 << 4 // Fog factor from iterated Z
	VOODOO_FOG_CONSTANT = 1 << 5
)

// lfbMode fields
const (
	VOODOO_LFB_FORMAT_MASK = 0xF
	VOODOO_LFB_WRITE_SHIFT = 4 // Write buffer select (2 bits)
	VOODOO_LFB_READ_SHIFT  = 6 // Read buffer select (2 bits)
	VOODOO_LFB_PIXEL_PIPE  = 1 << 8
	VOODOO_LFB_Y_ORIGIN    = 1 << 13
)

// Linear framebuffer write formats
const (
	VOODOO_LFB_565   = 0
	VOODOO_LFB_555   = 1
	VOODOO_LFB_1555  = 2
	VOODOO_LFB_888   = 4
	VOODOO_LFB_8888  = 5
	VOODOO_LFB_Z565  = 12
	VOODOO_LFB_DEPTH = 15
)

// fbiInit fields
const (
	VOODOO_FBIINIT0_VGA_PASS    = 1 << 0
	VOODOO_FBIINIT0_GRAPH_RESET = 1 << 1
	VOODOO_FBIINIT0_FIFO_RESET  = 1 << 2
	VOODOO_FBIINIT1_SLI_ENABLE  = 1 << 23
	VOODOO_FBIINIT1_BLOCK_WIDE  = 1 << 24 // Adds 32 tiles to the row width (SST-2)
	VOODOO_FBIINIT2_SWAP_SHIFT  = 9
	VOODOO_FBIINIT2_SWAP_MASK   = 3 << VOODOO_FBIINIT2_SWAP_SHIFT
	VOODOO_FBIINIT2_SWAP_SLI    = 3 << VOODOO_FBIINIT2_SWAP_SHIFT
	VOODOO_INITENABLE_REMAP_DAC = 1 << 2
	VOODOO_INITENABLE_SLI_SLAVE = 1 << 11
)

// textureMode fields
const (
	VOODOO_TEX_PERSPECTIVE  = 1 << 0
	VOODOO_TEX_MINIFY       = 1 << 1
	VOODOO_TEX_MAGNIFY      = 1 << 2
	VOODOO_TEX_CLAMP_W      = 1 << 3
	VOODOO_TEX_NCC_SELECT   = 1 << 5
	VOODOO_TEX_CLAMP_S      = 1 << 6
	VOODOO_TEX_CLAMP_T      = 1 << 7
	VOODOO_TEX_FORMAT_SHIFT = 8 // 4 bits
)

// Texture formats (textureMode bits 8-11)
const (
	VOODOO_TEX_FMT_RGB332   = 0x0
	VOODOO_TEX_FMT_YIQ      = 0x1
	VOODOO_TEX_FMT_A8       = 0x2
	VOODOO_TEX_FMT_I8       = 0x3
	VOODOO_TEX_FMT_AI44     = 0x4
	VOODOO_TEX_FMT_PAL8     = 0x5
	VOODOO_TEX_FMT_APAL8    = 0x6 // SST-2
	VOODOO_TEX_FMT_ARGB8332 = 0x8
	VOODOO_TEX_FMT_AYIQ8422 = 0x9
	VOODOO_TEX_FMT_RGB565   = 0xA
	VOODOO_TEX_FMT_ARGB1555 = 0xB
	VOODOO_TEX_FMT_ARGB4444 = 0xC
	VOODOO_TEX_FMT_AI88     = 0xD
	VOODOO_TEX_FMT_APAL88   = 0xE
)

// tLOD fields
const (
	VOODOO_TLOD_MIN_MASK     = 0x3F // 4.2 fixed
	VOODOO_TLOD_MAX_SHIFT    = 6
	VOODOO_TLOD_ODD          = 1 << 18
	VOODOO_TLOD_SPLIT        = 1 << 19
	VOODOO_TLOD_S_IS_WIDER   = 1 << 20
	VOODOO_TLOD_ASPECT_SHIFT = 21 // 2 bits
	VOODOO_TLOD_MULTIBASE    = 1 << 24
	VOODOO_TLOD_CACHE_KEY    = 0xF00FFF | VOODOO_TLOD_MULTIBASE
)

// Fixed point formats
const (
	VOODOO_FIXED_12_4_SHIFT  = 4  // Vertex coordinates (12.4)
	VOODOO_FIXED_12_12_SHIFT = 12 // Colors (12.12)
	VOODOO_FIXED_14_18_SHIFT = 18 // Texture coords (14.18)
	VOODOO_FIXED_20_12_SHIFT = 12 // Z coordinate (20.12)
	VOODOO_FIXED_2_30_SHIFT  = 30 // W coordinate (2.30)
)
